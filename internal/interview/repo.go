package interview

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateInterview(ctx context.Context, iv *Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *Repo) GetInterview(ctx context.Context, id string) (*Interview, error) {
	var iv Interview
	if err := r.db.WithContext(ctx).First(&iv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &iv, nil
}

// UpdateInterviewCAS writes the session record only if nobody advanced
// its turn since we read it. On success iv.Turn reflects the stored
// value.
func (r *Repo) UpdateInterviewCAS(ctx context.Context, iv *Interview) error {
	readTurn := iv.Turn
	res := r.db.WithContext(ctx).Model(&Interview{}).
		Where("id = ? AND turn = ?", iv.ID, readTurn).
		Updates(map[string]any{
			"status":        iv.Status,
			"current_stage": iv.CurrentStage,
			"final_score":   iv.FinalScore,
			"ended_at":      iv.EndedAt,
			"turn":          readTurn + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStoreConflict
	}
	iv.Turn = readTurn + 1
	return nil
}

func (r *Repo) AppendMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// InsertCandidateMessageOrGetExisting makes candidate submits
// idempotent: when (interview_id, idempotency_key) already exists the
// stored row is returned instead of a second insert.
func (r *Repo) InsertCandidateMessageOrGetExisting(ctx context.Context, m *Message) (*Message, bool, error) {
	if m.IdempotencyKey == nil || *m.IdempotencyKey == "" {
		m.IdempotencyKey = nil
		if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
			return nil, false, err
		}
		return m, true, nil
	}

	err := r.db.WithContext(ctx).Create(m).Error
	if err == nil {
		return m, true, nil
	}

	var existing Message
	getErr := r.db.WithContext(ctx).
		Where("interview_id = ? AND idempotency_key = ?", m.InterviewID, *m.IdempotencyKey).
		First(&existing).Error
	if getErr == nil {
		return &existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}

// ListMessages returns the full transcript in creation order.
func (r *Repo) ListMessages(ctx context.Context, interviewID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) LastBotMessage(ctx context.Context, interviewID string) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND sender = ?", interviewID, SenderBot).
		Order("id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// CreateScore records the write-once stage score. A second write for the
// same (interview, category) fails with ErrDuplicateScore.
func (r *Repo) CreateScore(ctx context.Context, s *EvaluationScore) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err == nil {
		return nil
	}

	var cnt int64
	if chkErr := r.db.WithContext(ctx).Model(&EvaluationScore{}).
		Where("interview_id = ? AND category = ?", s.InterviewID, s.Category).
		Count(&cnt).Error; chkErr == nil && cnt > 0 {
		return ErrDuplicateScore
	}
	return err
}

func (r *Repo) ListScores(ctx context.Context, interviewID string) ([]EvaluationScore, error) {
	var scores []EvaluationScore
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("id ASC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// CreateSummary persists the one-per-session summary. A conflict retry
// of the concluding turn recomputes the same aggregate, so an existing
// row for the interview counts as this write having landed.
func (r *Repo) CreateSummary(ctx context.Context, s *EvaluationSummary) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err == nil {
		return nil
	}

	var existing EvaluationSummary
	if chkErr := r.db.WithContext(ctx).
		Where("interview_id = ?", s.InterviewID).
		First(&existing).Error; chkErr == nil {
		*s = existing
		return nil
	}
	return err
}

func (r *Repo) GetSummary(ctx context.Context, interviewID string) (*EvaluationSummary, error) {
	var s EvaluationSummary
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListInterviews serves the HR listing; zero-value filters are ignored.
func (r *Repo) ListInterviews(ctx context.Context, status Status, vacancyID string, limit, offset int) ([]Interview, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&Interview{}).
		Order("created_at DESC").
		Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if vacancyID != "" {
		q = q.Where("vacancy_id = ?", vacancyID)
	}

	var out []Interview
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type DashboardStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[Status]int64 `json:"by_status"`
	AverageScore *float64         `json:"average_final_score"`
}

func (r *Repo) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{ByStatus: make(map[Status]int64)}

	type row struct {
		Status Status
		N      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&Interview{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		stats.ByStatus[rw.Status] = rw.N
		stats.Total += rw.N
	}

	var avg *float64
	if err := r.db.WithContext(ctx).Model(&Interview{}).
		Where("status = ?", StatusCompleted).
		Select("avg(final_score)").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AverageScore = avg

	return stats, nil
}
