package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// openTestDB gives every test its own named in-memory database so the
// connection pool always lands on the same instance.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Interview{}, &Message{}, &EvaluationScore{}, &EvaluationSummary{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedInterview(t *testing.T, repo *Repo, id string) *Interview {
	t.Helper()
	iv := &Interview{
		ID:           id,
		CandidateID:  "cand-1",
		VacancyID:    "vac-1",
		Status:       StatusPending,
		CurrentStage: StageResumeFit,
		StartedAt:    time.Now().UTC(),
	}
	if err := repo.CreateInterview(context.Background(), iv); err != nil {
		t.Fatalf("create interview: %v", err)
	}
	return iv
}

func TestUpdateInterviewCAS_Conflict(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seedInterview(t, repo, "01TESTINTERVIEW00000000000")

	// Two actors read the same turn.
	a, err := repo.GetInterview(ctx, "01TESTINTERVIEW00000000000")
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	b, err := repo.GetInterview(ctx, "01TESTINTERVIEW00000000000")
	if err != nil {
		t.Fatalf("get b: %v", err)
	}

	a.Status = StatusInProgress
	if err := repo.UpdateInterviewCAS(ctx, a); err != nil {
		t.Fatalf("first cas: %v", err)
	}
	if a.Turn != 1 {
		t.Fatalf("expected turn 1 after cas, got %d", a.Turn)
	}

	b.Status = StatusAborted
	if err := repo.UpdateInterviewCAS(ctx, b); !errors.Is(err, ErrStoreConflict) {
		t.Fatalf("expected ErrStoreConflict, got %v", err)
	}

	// The losing write must not have landed.
	cur, err := repo.GetInterview(ctx, "01TESTINTERVIEW00000000000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cur.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", cur.Status)
	}
}

func TestInsertCandidateMessage_Idempotent(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seedInterview(t, repo, "01TESTINTERVIEW00000000001")

	key := "client-msg-1"
	first := &Message{
		InterviewID:    "01TESTINTERVIEW00000000001",
		Sender:         SenderCandidate,
		Stage:          StageResumeFit,
		MessageType:    MessageAnswer,
		Message:        "yes, I can relocate",
		IdempotencyKey: &key,
	}
	stored, created, err := repo.InsertCandidateMessageOrGetExisting(ctx, first)
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}

	retry := &Message{
		InterviewID:    "01TESTINTERVIEW00000000001",
		Sender:         SenderCandidate,
		Stage:          StageResumeFit,
		MessageType:    MessageAnswer,
		Message:        "yes, I can relocate",
		IdempotencyKey: &key,
	}
	again, created, err := repo.InsertCandidateMessageOrGetExisting(ctx, retry)
	if err != nil {
		t.Fatalf("retry insert: %v", err)
	}
	if created {
		t.Fatalf("retry must not create a second row")
	}
	if again.ID != stored.ID {
		t.Fatalf("expected existing row %d, got %d", stored.ID, again.ID)
	}

	msgs, err := repo.ListMessages(ctx, "01TESTINTERVIEW00000000001")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
}

func TestInsertCandidateMessage_NoKeyAlwaysInserts(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seedInterview(t, repo, "01TESTINTERVIEW00000000002")

	for i := 0; i < 2; i++ {
		m := &Message{
			InterviewID: "01TESTINTERVIEW00000000002",
			Sender:      SenderCandidate,
			Stage:       StageResumeFit,
			MessageType: MessageAnswer,
			Message:     "same text",
		}
		if _, created, err := repo.InsertCandidateMessageOrGetExisting(ctx, m); err != nil || !created {
			t.Fatalf("insert %d: created=%v err=%v", i, created, err)
		}
	}

	msgs, err := repo.ListMessages(ctx, "01TESTINTERVIEW00000000002")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestCreateScore_WriteOnce(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seedInterview(t, repo, "01TESTINTERVIEW00000000003")

	s := &EvaluationScore{
		InterviewID: "01TESTINTERVIEW00000000003",
		Category:    CategoryResumeFit,
		Score:       80,
		Weight:      0.3,
	}
	if err := repo.CreateScore(ctx, s); err != nil {
		t.Fatalf("first score: %v", err)
	}

	dup := &EvaluationScore{
		InterviewID: "01TESTINTERVIEW00000000003",
		Category:    CategoryResumeFit,
		Score:       10,
		Weight:      0.3,
	}
	if err := repo.CreateScore(ctx, dup); !errors.Is(err, ErrDuplicateScore) {
		t.Fatalf("expected ErrDuplicateScore, got %v", err)
	}

	scores, err := repo.ListScores(ctx, "01TESTINTERVIEW00000000003")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 80 {
		t.Fatalf("original score must survive, got %+v", scores)
	}
}

func TestCreateSummary_ReplayLandsOnExistingRow(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seedInterview(t, repo, "01TESTINTERVIEW00000000005")

	first := &EvaluationSummary{
		InterviewID:  "01TESTINTERVIEW00000000005",
		OverallScore: 79,
		Breakdown:    map[string]float64{"resume_fit": 80},
		Reasoning:    []string{"resume fit: scored 80.0 out of 100"},
		AIConfidence: 0.9,
		GeneratedAt:  time.Now().UTC(),
	}
	if err := repo.CreateSummary(ctx, first); err != nil {
		t.Fatalf("first summary: %v", err)
	}

	// A retried concluding turn recomputes the same summary.
	replay := &EvaluationSummary{
		InterviewID:  "01TESTINTERVIEW00000000005",
		OverallScore: 79,
		Breakdown:    map[string]float64{"resume_fit": 80},
		Reasoning:    []string{"resume fit: scored 80.0 out of 100"},
		AIConfidence: 0.9,
		GeneratedAt:  time.Now().UTC(),
	}
	if err := repo.CreateSummary(ctx, replay); err != nil {
		t.Fatalf("replayed summary must succeed: %v", err)
	}
	if replay.ID != first.ID {
		t.Fatalf("replay must resolve to row %d, got %d", first.ID, replay.ID)
	}

	sum, err := repo.GetSummary(ctx, "01TESTINTERVIEW00000000005")
	if err != nil || sum == nil {
		t.Fatalf("get summary: %v %v", sum, err)
	}
	if sum.ID != first.ID || sum.OverallScore != 79 {
		t.Fatalf("original row must survive, got %+v", sum)
	}
}

func TestLastBotMessage(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seedInterview(t, repo, "01TESTINTERVIEW00000000004")

	if m, err := repo.LastBotMessage(ctx, "01TESTINTERVIEW00000000004"); err != nil || m != nil {
		t.Fatalf("expected no bot message yet, got %v %v", m, err)
	}

	for _, text := range []string{"first question", "second question"} {
		if err := repo.AppendMessage(ctx, &Message{
			InterviewID: "01TESTINTERVIEW00000000004",
			Sender:      SenderBot,
			Stage:       StageResumeFit,
			MessageType: MessageQuestion,
			Message:     text,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	m, err := repo.LastBotMessage(ctx, "01TESTINTERVIEW00000000004")
	if err != nil {
		t.Fatalf("last bot: %v", err)
	}
	if m == nil || m.Message != "second question" {
		t.Fatalf("expected latest bot message, got %+v", m)
	}
}

func TestStats(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	score := 79.0
	rows := []*Interview{
		{ID: "01TESTSTATS000000000000001", CandidateID: "c", VacancyID: "v", Status: StatusCompleted, CurrentStage: StageFinished, FinalScore: &score},
		{ID: "01TESTSTATS000000000000002", CandidateID: "c", VacancyID: "v", Status: StatusInProgress, CurrentStage: StageHardSkills},
		{ID: "01TESTSTATS000000000000003", CandidateID: "c", VacancyID: "v", Status: StatusAborted, CurrentStage: StageFinished},
	}
	for _, iv := range rows {
		if err := repo.CreateInterview(ctx, iv); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if stats.ByStatus[StatusCompleted] != 1 || stats.ByStatus[StatusAborted] != 1 {
		t.Fatalf("unexpected by_status: %v", stats.ByStatus)
	}
	if stats.AverageScore == nil || *stats.AverageScore != 79 {
		t.Fatalf("unexpected average: %v", stats.AverageScore)
	}
}
