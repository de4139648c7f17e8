package ai

import (
	"strings"
	"testing"
)

func TestParseOutcome_PlainObject(t *testing.T) {
	raw := `{"reply": "Tell me more.", "directive": "continue"}`

	out, err := parseOutcome(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.Reply != "Tell me more." || out.Directive != DirectiveContinue {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestParseOutcome_FencedJSON(t *testing.T) {
	raw := "Here is my answer:\n```json\n" +
		`{"reply": "Moving on.", "directive": "advance", "score": 75, "explanation": "solid", "confidence": 0.8}` +
		"\n```"

	out, err := parseOutcome(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.Directive != DirectiveAdvance || out.Score == nil || *out.Score != 75 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestParseOutcome_Rejects(t *testing.T) {
	cases := []string{
		"no json at all",
		`{"reply": "", "directive": "continue"}`,
		`{"reply": "x", "directive": "advance"}`,
		`{"reply": "x", "directive": "advance", "score": 150}`,
		`{"reply": "x", "directive": "banana", "score": 50}`,
	}
	for _, raw := range cases {
		if _, err := parseOutcome(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestSystemPrompt_CarriesContext(t *testing.T) {
	p := systemPrompt(Request{
		Stage:     "hard_skills",
		Vacancy:   VacancyContext{Title: "Go Developer", City: "Berlin", RequiredSkills: []string{"Go", "PostgreSQL"}},
		Candidate: CandidateContext{FullName: "Alex", Skills: []string{"Go"}},
	})
	for _, want := range []string{"hard_skills", "Go Developer", "PostgreSQL", "Alex"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
