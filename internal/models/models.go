package models

import "time"

type UserRole string

const (
	RoleEmployer  UserRole = "employer"
	RoleCandidate UserRole = "candidate"
)

type User struct {
	ID           string   `gorm:"primaryKey;size:36" json:"id"`
	Email        string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:128;not null" json:"-"`
	Role         UserRole `gorm:"size:16;index;not null" json:"role"`
	FullName     string   `gorm:"size:255" json:"full_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Candidate is the interviewable profile behind a candidate user.
type Candidate struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	UserID         string `gorm:"size:36;uniqueIndex;not null" json:"-"`
	FullName       string `gorm:"size:255" json:"full_name"`
	City           string `gorm:"size:128" json:"city"`
	EmploymentType string `gorm:"size:32" json:"employment_type"`
	ExpectedSalary int    `json:"expected_salary"`

	// Comma-separated is enough for matching; the oracle gets a slice.
	Skills          string  `gorm:"type:text" json:"skills"`
	ExperienceYears float64 `json:"experience_years"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Candidate) TableName() string { return "candidates" }

type Vacancy struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	EmployerID     string `gorm:"size:36;index;not null" json:"-"`
	Title          string `gorm:"size:255;not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	City           string `gorm:"size:128" json:"city"`
	EmploymentType string `gorm:"size:32" json:"employment_type"`
	ExperienceMin  int    `json:"experience_min"`
	SalaryMin      int    `json:"salary_min"`
	SalaryMax      int    `json:"salary_max"`
	RequiredSkills string `gorm:"type:text" json:"required_skills"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vacancy) TableName() string { return "vacancies" }

type ParseStatus string

const (
	ParsePending ParseStatus = "pending"
	ParseDone    ParseStatus = "done"
	ParseFailed  ParseStatus = "failed"
)

type Resume struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	CandidateID string      `gorm:"size:36;index;not null" json:"candidate_id"`
	FileName    string      `gorm:"size:255;not null" json:"file_name"`
	ObjectKey   string      `gorm:"size:512;not null" json:"-"`
	ContentType string      `gorm:"size:128" json:"content_type"`
	SizeBytes   int64       `json:"size_bytes"`
	ParseStatus ParseStatus `gorm:"size:16;index;not null" json:"parse_status"`
	ParsedText  string      `gorm:"type:longtext" json:"-"`
	ParseError  *string     `gorm:"type:text" json:"parse_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Resume) TableName() string { return "resumes" }
