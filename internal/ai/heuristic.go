package ai

import (
	"context"
	"fmt"
	"strings"
)

// HeuristicProvider is a deterministic, rule-based interviewer. It needs
// no external service, which makes it the default for development and
// the workhorse for tests. Scoring is keyword-based; each stage advances
// after two answers.
type HeuristicProvider struct{}

func NewHeuristicProvider() *HeuristicProvider { return &HeuristicProvider{} }

const (
	answersPerStage     = 2
	disqualifyBelow     = 30.0
	heuristicConfidence = 0.85
)

func (p *HeuristicProvider) Invoke(ctx context.Context, req Request) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answers := stageAnswers(req)

	// Opening call for the stage: ask the first question, no scoring yet.
	if len(answers) == 0 {
		return &Outcome{
			Reply:     p.openingQuestion(req),
			Directive: DirectiveContinue,
		}, nil
	}

	if len(answers) < answersPerStage {
		return &Outcome{
			Reply:     followUpQuestion(req.Stage),
			Directive: DirectiveContinue,
		}, nil
	}

	// Enough signal: average the per-answer scores and move on.
	var total float64
	for _, a := range answers {
		total += scoreAnswer(req.Stage, a)
	}
	score := total / float64(len(answers))
	conf := heuristicConfidence

	out := &Outcome{
		Score:       &score,
		Explanation: explainScore(req.Stage, score),
		Confidence:  &conf,
	}

	switch {
	case req.Stage == "resume_fit" && score < disqualifyBelow:
		// Basic requirements not met, no point continuing.
		out.Directive = DirectiveConclude
		out.Reply = "Thank you for your honesty. Unfortunately the basic requirements of this position don't seem to match your situation, so we'll stop here."
	case req.Stage == "soft_skills":
		out.Directive = DirectiveConclude
		out.Reply = "Thank you! We've completed the interview. Let me prepare your evaluation."
	default:
		out.Directive = DirectiveAdvance
		out.Reply = advanceMessage(req.Stage)
	}
	return out, nil
}

func stageAnswers(req Request) []string {
	var out []string
	for _, m := range req.Transcript {
		if m.Sender == "candidate" && m.Stage == req.Stage {
			out = append(out, m.Text)
		}
	}
	return out
}

func (p *HeuristicProvider) openingQuestion(req Request) string {
	switch req.Stage {
	case "resume_fit":
		return resumeFitQuestion(req)
	case "hard_skills":
		return hardSkillsQuestion(req)
	case "soft_skills":
		return softSkillsQuestions[0]
	}
	return "Is there anything else you'd like to add?"
}

// resumeFitQuestion probes the first detected mismatch between the
// vacancy and the candidate profile.
func resumeFitQuestion(req Request) string {
	v, c := req.Vacancy, req.Candidate
	switch {
	case v.City != "" && c.City != "" && !strings.EqualFold(v.City, c.City):
		return fmt.Sprintf("I see this position is based in %s. Would you be able to work from this location?", v.City)
	case v.ExperienceMin > 0 && c.ExperienceYears < float64(v.ExperienceMin):
		return fmt.Sprintf("The role requires %d+ years of experience. Can you tell me about your relevant experience?", v.ExperienceMin)
	case v.EmploymentType != "" && c.EmploymentType != "" && v.EmploymentType != c.EmploymentType:
		return fmt.Sprintf("This is a %s position. Is this type of employment suitable for you?", v.EmploymentType)
	case v.SalaryMin > 0 && c.ExpectedSalary > 0 && c.ExpectedSalary > v.SalaryMax && v.SalaryMax > 0:
		return fmt.Sprintf("The salary range for this role is %d-%d. Does this align with your expectations?", v.SalaryMin, v.SalaryMax)
	default:
		return "Your basic profile seems to match this position well. Are you available to start, and is there anything about the role's conditions you'd like to clarify?"
	}
}

func hardSkillsQuestion(req Request) string {
	required := req.Vacancy.RequiredSkills
	if len(required) == 0 {
		return "Can you tell me about your most relevant technical experience for this role?"
	}

	have := make(map[string]bool, len(req.Candidate.Skills))
	for _, s := range req.Candidate.Skills {
		have[strings.ToLower(s)] = true
	}

	var missing []string
	for _, s := range required {
		if !have[strings.ToLower(s)] {
			missing = append(missing, s)
		}
	}
	if len(missing) > 3 {
		missing = missing[:3]
	}
	if len(missing) > 0 {
		return fmt.Sprintf("I notice the job requires experience with %s. Can you tell me about your experience with these technologies?", strings.Join(missing, ", "))
	}

	named := required
	if len(named) > 3 {
		named = named[:3]
	}
	return fmt.Sprintf("I see you have experience with %s. Can you tell me about a specific project where you used these skills?", strings.Join(named, ", "))
}

var softSkillsQuestions = []string{
	"What motivates you most in your work?",
	"How do you handle tight deadlines and pressure?",
	"Can you tell me about a time when you had to work with a difficult team member?",
	"What's your approach to learning new technologies or skills?",
}

func followUpQuestion(stage string) string {
	switch stage {
	case "resume_fit":
		return "Is there anything else about your background or availability you'd like to clarify?"
	case "hard_skills":
		return "Can you provide more details about your technical expertise?"
	case "soft_skills":
		return softSkillsQuestions[1]
	}
	return "Is there anything else you'd like to add?"
}

func advanceMessage(stage string) string {
	if stage == "resume_fit" {
		return "Great, your profile matches the basics. Let's move on to your technical skills."
	}
	return "Thanks, that gives me a good picture. Let's talk about how you work with others."
}

// scoreAnswer maps one answer to 0-100 using the keyword rubric.
func scoreAnswer(stage, answer string) float64 {
	lower := strings.ToLower(answer)

	switch stage {
	case "resume_fit":
		for _, kw := range []string{"yes", "sure", "can do", "willing", "interested", "available", "open to"} {
			if strings.Contains(lower, kw) {
				return 80
			}
		}
		for _, kw := range []string{"no", "cannot", "can't", "unable", "not interested", "not available"} {
			if strings.Contains(lower, kw) {
				return 20
			}
		}
		return 50

	case "hard_skills":
		score := 30.0
		for _, kw := range []string{"experience", "project", "developed", "implemented", "designed", "built"} {
			if strings.Contains(lower, kw) {
				score += 10
			}
		}
		return min(score, 100)

	default: // soft_skills
		score := 40.0
		for _, kw := range []string{"collaborate", "team", "learn", "motivated", "challenge", "growth"} {
			if strings.Contains(lower, kw) {
				score += 10
			}
		}
		return min(score, 100)
	}
}

func explainScore(stage string, score float64) string {
	switch {
	case score > 70:
		switch stage {
		case "resume_fit":
			return "Strong alignment with job requirements"
		case "hard_skills":
			return "Demonstrated solid technical capabilities"
		default:
			return "Good communication and motivation"
		}
	case score < 40:
		switch stage {
		case "resume_fit":
			return "Some concerns about basic job fit"
		case "hard_skills":
			return "Limited technical experience for this role"
		default:
			return "Some concerns about soft skills"
		}
	default:
		return "Mixed signals during the " + strings.ReplaceAll(stage, "_", " ") + " stage"
	}
}
