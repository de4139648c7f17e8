package models

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hireloop/ai-interviewer/internal/ai"
)

// Directory resolves candidate/vacancy ids into oracle context. It is
// the read-only edge the interview engine sees of the CRUD side.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) CandidateContext(ctx context.Context, candidateID string) (*ai.CandidateContext, error) {
	var c Candidate
	if err := d.db.WithContext(ctx).First(&c, "id = ?", candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	out := &ai.CandidateContext{
		FullName:        c.FullName,
		City:            c.City,
		EmploymentType:  c.EmploymentType,
		ExpectedSalary:  c.ExpectedSalary,
		ExperienceYears: c.ExperienceYears,
		Skills:          splitList(c.Skills),
	}

	// Latest successfully parsed resume feeds the oracle, if any.
	var r Resume
	err := d.db.WithContext(ctx).
		Where("candidate_id = ? AND parse_status = ?", candidateID, ParseDone).
		Order("created_at DESC").
		First(&r).Error
	if err == nil {
		out.ResumeText = r.ParsedText
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return out, nil
}

func (d *Directory) VacancyContext(ctx context.Context, vacancyID string) (*ai.VacancyContext, error) {
	var v Vacancy
	if err := d.db.WithContext(ctx).First(&v, "id = ?", vacancyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ai.VacancyContext{
		Title:          v.Title,
		Description:    v.Description,
		City:           v.City,
		EmploymentType: v.EmploymentType,
		ExperienceMin:  v.ExperienceMin,
		SalaryMin:      v.SalaryMin,
		SalaryMax:      v.SalaryMax,
		RequiredSkills: splitList(v.RequiredSkills),
	}, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
