package resume

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/hireloop/ai-interviewer/internal/models"
	"github.com/hireloop/ai-interviewer/internal/storage"
)

type recordingPublisher struct {
	published []string
}

func (p *recordingPublisher) PublishExtraction(ctx context.Context, resumeID string) error {
	p.published = append(p.published, resumeID)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Resume{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	files := storage.NewLocalStore(t.TempDir())
	return NewService(openTestDB(t), files, pub), pub
}

func TestUploadAndExtract(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	body := "Senior Go developer. 6 years of backend experience."
	rec, err := svc.Upload(ctx, "cand-1", "resume.txt", "text/plain", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if rec.ParseStatus != models.ParsePending {
		t.Fatalf("expected pending, got %s", rec.ParseStatus)
	}
	if len(pub.published) != 1 || pub.published[0] != rec.ID {
		t.Fatalf("extraction job not published: %v", pub.published)
	}

	if err := svc.HandleExtraction(ctx, rec.ID); err != nil {
		t.Fatalf("extract: %v", err)
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ParseStatus != models.ParseDone {
		t.Fatalf("expected done, got %s (%v)", got.ParseStatus, got.ParseError)
	}
	if got.ParsedText != body {
		t.Fatalf("unexpected parsed text: %q", got.ParsedText)
	}
}

func TestUpload_RejectsUnknownExtension(t *testing.T) {
	svc, pub := newTestService(t)

	_, err := svc.Upload(context.Background(), "cand-1", "resume.exe", "application/octet-stream", strings.NewReader("x"), 1)
	if err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("nothing must be published on rejection")
	}
}

func TestHandleExtraction_UnsupportedFormat(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	body := "%PDF-1.4 fake"
	rec, err := svc.Upload(ctx, "cand-1", "resume.pdf", "application/pdf", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// The failure is recorded on the row, not bounced back to the queue.
	if err := svc.HandleExtraction(ctx, rec.ID); err != nil {
		t.Fatalf("extract must swallow parse failures: %v", err)
	}

	got, _ := svc.Get(ctx, rec.ID)
	if got.ParseStatus != models.ParseFailed {
		t.Fatalf("expected failed, got %s", got.ParseStatus)
	}
	if got.ParseError == nil || *got.ParseError == "" {
		t.Fatalf("parse error must be recorded")
	}
}

func TestHandleExtraction_RedeliveryIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	body := "plain text resume"
	rec, err := svc.Upload(ctx, "cand-1", "resume.md", "text/markdown", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.HandleExtraction(ctx, rec.ID); err != nil {
		t.Fatalf("first extract: %v", err)
	}
	if err := svc.HandleExtraction(ctx, rec.ID); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	got, _ := svc.Get(ctx, rec.ID)
	if got.ParseStatus != models.ParseDone || got.ParsedText != body {
		t.Fatalf("redelivery must not disturb the parsed row: %+v", got)
	}
}

func TestListByCandidate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		body := "resume body"
		if _, err := svc.Upload(ctx, "cand-1", "r.txt", "text/plain", strings.NewReader(body), int64(len(body))); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}
	body := "other"
	if _, err := svc.Upload(ctx, "cand-2", "r.txt", "text/plain", strings.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("upload other: %v", err)
	}

	out, err := svc.ListByCandidate(ctx, "cand-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 resumes, got %d", len(out))
	}
}
