package interview

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
)

// Terminal reports whether no further state transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

type Stage string

const (
	StageResumeFit  Stage = "resume_fit"
	StageHardSkills Stage = "hard_skills"
	StageSoftSkills Stage = "soft_skills"
	StageFinished   Stage = "finished"
)

// Next returns the following stage. ok is false for the terminal stage.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StageResumeFit:
		return StageHardSkills, true
	case StageHardSkills:
		return StageSoftSkills, true
	case StageSoftSkills:
		return StageFinished, true
	default:
		return StageFinished, false
	}
}

type Category string

const (
	CategoryResumeFit  Category = "resume_fit"
	CategoryHardSkills Category = "hard_skills"
	CategorySoftSkills Category = "soft_skills"
)

type Sender string

const (
	SenderBot       Sender = "bot"
	SenderCandidate Sender = "candidate"
)

type MessageType string

const (
	MessageQuestion MessageType = "question"
	MessageAnswer   MessageType = "answer"
	MessageSystem   MessageType = "system"
)

// Interview is one candidate's run through the three-stage interview.
// Turn is an optimistic-concurrency counter: every state-affecting write
// must CAS against the turn it read.
type Interview struct {
	ID           string   `gorm:"primaryKey;size:26" json:"id"` // ULID
	CandidateID  string   `gorm:"size:36;index;not null" json:"candidate_id"`
	VacancyID    string   `gorm:"size:36;index;not null" json:"vacancy_id"`
	Status       Status   `gorm:"size:16;index;not null" json:"status"`
	CurrentStage Stage    `gorm:"size:16;not null" json:"current_stage"`
	Turn         uint64   `gorm:"not null;default:0" json:"-"`
	FinalScore   *float64 `json:"final_score"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Interview) TableName() string { return "interviews" }

// Message is one append-only transcript entry. The idempotency key makes
// client retries of the same candidate message harmless: the unique
// index rejects the second insert.
type Message struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	InterviewID    string      `gorm:"size:26;not null;index:idx_msg_interview;index:uniq_msg_idempo,unique,priority:1" json:"-"`
	Sender         Sender      `gorm:"size:16;not null" json:"sender"`
	Stage          Stage       `gorm:"size:16;not null" json:"stage"`
	MessageType    MessageType `gorm:"size:16;not null" json:"message_type"`
	Message        string      `gorm:"type:text;not null" json:"message"`
	AIGenerated    bool        `gorm:"not null;default:false" json:"ai_generated"`
	IdempotencyKey *string     `gorm:"size:128;index:uniq_msg_idempo,unique,priority:2" json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (Message) TableName() string { return "interview_messages" }

// EvaluationScore is written exactly once per (interview, category),
// when the stage machine concludes that stage. The unique index is the
// write-once guarantee.
type EvaluationScore struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	InterviewID string    `gorm:"size:26;not null;index:uniq_score_category,unique,priority:1" json:"-"`
	Category    Category  `gorm:"size:16;not null;index:uniq_score_category,unique,priority:2" json:"category"`
	Score       float64   `gorm:"not null" json:"score"`
	Weight      float64   `gorm:"not null;default:1" json:"weight"`
	Explanation *string   `gorm:"type:text" json:"explanation"`
	CreatedAt   time.Time `json:"created_at"`
}

func (EvaluationScore) TableName() string { return "evaluation_scores" }

// EvaluationSummary is created once per terminal session and never
// revised.
type EvaluationSummary struct {
	ID           uint64             `gorm:"primaryKey;autoIncrement" json:"-"`
	InterviewID  string             `gorm:"size:26;uniqueIndex;not null" json:"-"`
	OverallScore float64            `gorm:"not null" json:"overall_score"`
	Breakdown    map[string]float64 `gorm:"serializer:json" json:"breakdown"`
	Reasoning    []string           `gorm:"serializer:json" json:"reasoning"`
	AIConfidence float64            `gorm:"not null" json:"ai_confidence"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

func (EvaluationSummary) TableName() string { return "evaluation_summary" }
