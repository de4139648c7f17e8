package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LLM-backed providers share one prompt contract: the model must answer
// with a single JSON object carrying reply/directive/score so the engine
// can parse it deterministically.

const systemPromptTemplate = `You are an automated job interviewer. The interview runs in three fixed
stages: resume_fit, hard_skills, soft_skills. You are currently in the %q stage.

Vacancy: %s
Candidate: %s

Ask one question at a time. After enough signal for the current stage,
advance. Only conclude from a non-final stage when the candidate is
clearly disqualified. Respond with EXACTLY one JSON object, no prose:
{"reply": "<next message to the candidate>",
 "directive": "continue" | "advance" | "conclude",
 "score": <0-100, required unless directive is continue>,
 "explanation": "<one line justifying the score>",
 "confidence": <0.0-1.0>}`

func systemPrompt(req Request) string {
	return fmt.Sprintf(systemPromptTemplate, req.Stage, describeVacancy(req.Vacancy), describeCandidate(req.Candidate))
}

func describeVacancy(v VacancyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)", v.Title, v.City, v.EmploymentType)
	if v.ExperienceMin > 0 {
		fmt.Fprintf(&b, ", %d+ years", v.ExperienceMin)
	}
	if v.SalaryMin > 0 || v.SalaryMax > 0 {
		fmt.Fprintf(&b, ", salary %d-%d", v.SalaryMin, v.SalaryMax)
	}
	if len(v.RequiredSkills) > 0 {
		fmt.Fprintf(&b, ", requires: %s", strings.Join(v.RequiredSkills, ", "))
	}
	if v.Description != "" {
		fmt.Fprintf(&b, ". %s", v.Description)
	}
	return b.String()
}

func describeCandidate(c CandidateContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s, %.1f years experience)", c.FullName, c.City, c.EmploymentType, c.ExperienceYears)
	if c.ExpectedSalary > 0 {
		fmt.Fprintf(&b, ", expects %d", c.ExpectedSalary)
	}
	if len(c.Skills) > 0 {
		fmt.Fprintf(&b, ", skills: %s", strings.Join(c.Skills, ", "))
	}
	if c.ResumeText != "" {
		fmt.Fprintf(&b, ". Resume: %s", c.ResumeText)
	}
	return b.String()
}

type oracleReply struct {
	Reply       string   `json:"reply"`
	Directive   string   `json:"directive"`
	Score       *float64 `json:"score"`
	Explanation string   `json:"explanation"`
	Confidence  *float64 `json:"confidence"`
}

// parseOutcome extracts the JSON contract from raw model output.
// Models occasionally wrap JSON in code fences or prose, so the first
// balanced object is taken.
func parseOutcome(raw string) (*Outcome, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("oracle: no JSON object in reply")
	}

	var r oracleReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &r); err != nil {
		return nil, fmt.Errorf("oracle: malformed reply: %w", err)
	}
	if r.Reply == "" {
		return nil, fmt.Errorf("oracle: empty reply text")
	}

	out := &Outcome{
		Reply:       r.Reply,
		Directive:   Directive(r.Directive),
		Score:       r.Score,
		Explanation: r.Explanation,
		Confidence:  r.Confidence,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
