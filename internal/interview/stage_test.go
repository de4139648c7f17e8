package interview

import (
	"testing"

	"github.com/hireloop/ai-interviewer/internal/ai"
)

func scorePtr(v float64) *float64 { return &v }

func TestEvaluateTransition_Continue(t *testing.T) {
	out := &ai.Outcome{Reply: "tell me more", Directive: ai.DirectiveContinue}

	tr, err := EvaluateTransition(StageResumeFit, out)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if tr.Kind != TransitionStay {
		t.Fatalf("expected stay, got %v", tr.Kind)
	}
}

func TestEvaluateTransition_AdvanceWalksStages(t *testing.T) {
	cases := []struct {
		from     Stage
		wantKind TransitionKind
		wantNext Stage
	}{
		{StageResumeFit, TransitionAdvance, StageHardSkills},
		{StageHardSkills, TransitionAdvance, StageSoftSkills},
		// advancing out of the final stage concludes
		{StageSoftSkills, TransitionConclude, ""},
	}

	for _, tc := range cases {
		out := &ai.Outcome{Directive: ai.DirectiveAdvance, Score: scorePtr(75)}
		tr, err := EvaluateTransition(tc.from, out)
		if err != nil {
			t.Fatalf("evaluate from %s: %v", tc.from, err)
		}
		if tr.Kind != tc.wantKind {
			t.Fatalf("from %s: expected kind %v, got %v", tc.from, tc.wantKind, tr.Kind)
		}
		if tc.wantKind == TransitionAdvance && tr.NextStage != tc.wantNext {
			t.Fatalf("from %s: expected next %s, got %s", tc.from, tc.wantNext, tr.NextStage)
		}
		if tr.Score != 75 {
			t.Fatalf("from %s: expected score 75, got %v", tc.from, tr.Score)
		}
	}
}

func TestEvaluateTransition_ConcludeFromFinalStage(t *testing.T) {
	out := &ai.Outcome{Directive: ai.DirectiveConclude, Score: scorePtr(88)}

	tr, err := EvaluateTransition(StageSoftSkills, out)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if tr.Kind != TransitionConclude {
		t.Fatalf("expected conclude, got %v", tr.Kind)
	}
}

func TestEvaluateTransition_EarlyConcludeAborts(t *testing.T) {
	for _, stage := range []Stage{StageResumeFit, StageHardSkills} {
		out := &ai.Outcome{Directive: ai.DirectiveConclude, Score: scorePtr(15)}
		tr, err := EvaluateTransition(stage, out)
		if err != nil {
			t.Fatalf("evaluate from %s: %v", stage, err)
		}
		if tr.Kind != TransitionAbort {
			t.Fatalf("from %s: expected abort, got %v", stage, tr.Kind)
		}
		if tr.Score != 15 {
			t.Fatalf("from %s: expected score 15, got %v", stage, tr.Score)
		}
	}
}

func TestEvaluateTransition_RejectsMissingScore(t *testing.T) {
	out := &ai.Outcome{Directive: ai.DirectiveAdvance}
	if _, err := EvaluateTransition(StageResumeFit, out); err == nil {
		t.Fatalf("expected error for advance without score")
	}
}

func TestEvaluateTransition_RejectsTerminalStage(t *testing.T) {
	out := &ai.Outcome{Directive: ai.DirectiveContinue}
	if _, err := EvaluateTransition(StageFinished, out); err == nil {
		t.Fatalf("expected error for finished stage")
	}
}

func TestCategoryForStage(t *testing.T) {
	if c, ok := CategoryForStage(StageHardSkills); !ok || c != CategoryHardSkills {
		t.Fatalf("unexpected mapping: %v %v", c, ok)
	}
	if _, ok := CategoryForStage(StageFinished); ok {
		t.Fatalf("finished must not map to a category")
	}
}
