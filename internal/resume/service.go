package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireloop/ai-interviewer/internal/models"
	"github.com/hireloop/ai-interviewer/internal/storage"
)

// Publisher is the slice of the queue the service needs.
type Publisher interface {
	PublishExtraction(ctx context.Context, resumeID string) error
}

var ErrUnsupportedFormat = errors.New("unsupported resume format")

// maxTextBytes caps parsed text so a pathological upload cannot blow up
// the oracle prompt.
const maxTextBytes = 256 * 1024

type Service struct {
	db    *gorm.DB
	files storage.FileStore
	pub   Publisher
}

func NewService(db *gorm.DB, files storage.FileStore, pub Publisher) *Service {
	return &Service{db: db, files: files, pub: pub}
}

// uploadExts are the formats accepted at upload time. PDF is stored but
// extraction for it is not implemented yet, so it parses to failed.
var uploadExts = map[string]bool{".txt": true, ".md": true, ".pdf": true}

// Upload stores the file, creates the pending resume row, and enqueues
// text extraction.
func (s *Service) Upload(ctx context.Context, candidateID, fileName, contentType string, r io.Reader, size int64) (*models.Resume, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !uploadExts[ext] {
		return nil, ErrUnsupportedFormat
	}

	id := uuid.NewString()
	key := fmt.Sprintf("resumes/%s/%s%s", candidateID, id, ext)

	if err := s.files.Put(ctx, key, r, size, contentType); err != nil {
		return nil, err
	}

	rec := &models.Resume{
		ID:          id,
		CandidateID: candidateID,
		FileName:    fileName,
		ObjectKey:   key,
		ContentType: contentType,
		SizeBytes:   size,
		ParseStatus: models.ParsePending,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}

	if err := s.pub.PublishExtraction(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Resume, error) {
	var rec models.Resume
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) ListByCandidate(ctx context.Context, candidateID string) ([]models.Resume, error) {
	var out []models.Resume
	err := s.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// HandleExtraction runs in the worker: pull the file, extract its text,
// record the outcome on the resume row.
func (s *Service) HandleExtraction(ctx context.Context, resumeID string) error {
	rec, err := s.Get(ctx, resumeID)
	if err != nil {
		return err
	}
	if rec.ParseStatus == models.ParseDone {
		// Redelivered message, nothing to do.
		return nil
	}

	f, err := s.files.Get(ctx, rec.ObjectKey)
	if err != nil {
		return s.markFailed(ctx, rec, err)
	}
	defer f.Close()

	text, err := extractText(rec.FileName, f)
	if err != nil {
		return s.markFailed(ctx, rec, err)
	}

	return s.db.WithContext(ctx).Model(rec).Updates(map[string]any{
		"parsed_text":  text,
		"parse_status": models.ParseDone,
		"parse_error":  nil,
	}).Error
}

func (s *Service) markFailed(ctx context.Context, rec *models.Resume, cause error) error {
	msg := cause.Error()
	if err := s.db.WithContext(ctx).Model(rec).Updates(map[string]any{
		"parse_status": models.ParseFailed,
		"parse_error":  msg,
	}).Error; err != nil {
		return err
	}
	// The failure is recorded; don't bounce the delivery to the DLQ.
	return nil
}

// extractText handles the plain-text formats.
// TODO: PDF extraction via a dedicated parser; .pdf uploads currently
// land in parse_failed with a clear reason.
func extractText(fileName string, r io.Reader) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md":
	default:
		return "", ErrUnsupportedFormat
	}

	b, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("resume text is not valid UTF-8")
	}
	return strings.TrimSpace(string(b)), nil
}
