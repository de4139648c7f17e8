package ai

import (
	"context"
	"fmt"
)

// Directive is the oracle's instruction for the current interview stage.
type Directive string

const (
	DirectiveContinue Directive = "continue"
	DirectiveAdvance  Directive = "advance"
	DirectiveConclude Directive = "conclude"
)

// Message is one transcript entry as seen by a provider.
type Message struct {
	Sender string // bot | candidate
	Stage  string
	Text   string
}

type VacancyContext struct {
	Title          string
	Description    string
	City           string
	EmploymentType string
	ExperienceMin  int
	SalaryMin      int
	SalaryMax      int
	RequiredSkills []string
}

type CandidateContext struct {
	FullName        string
	City            string
	EmploymentType  string
	ExpectedSalary  int
	ExperienceYears float64
	Skills          []string
	ResumeText      string
}

type Request struct {
	Stage      string
	Transcript []Message
	Vacancy    VacancyContext
	Candidate  CandidateContext
}

// Outcome is one oracle turn: a reply for the candidate plus the
// stage directive and, unless continuing, a 0-100 score.
type Outcome struct {
	Reply       string
	Directive   Directive
	Score       *float64
	Explanation string
	Confidence  *float64
}

// Validate rejects malformed oracle output before it reaches the
// stage machine. A failed validation is treated like a failed call.
func (o *Outcome) Validate() error {
	switch o.Directive {
	case DirectiveContinue:
		return nil
	case DirectiveAdvance, DirectiveConclude:
		if o.Score == nil {
			return fmt.Errorf("oracle: directive %q without score", o.Directive)
		}
		if *o.Score < 0 || *o.Score > 100 {
			return fmt.Errorf("oracle: score %v out of range", *o.Score)
		}
		return nil
	default:
		return fmt.Errorf("oracle: unknown directive %q", o.Directive)
	}
}

// Provider is the oracle boundary. Implementations must be safe for
// concurrent use across sessions.
type Provider interface {
	Invoke(ctx context.Context, req Request) (*Outcome, error)
}
