package interview

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestAggregate_WeightedMean(t *testing.T) {
	scores := []EvaluationScore{
		{Category: CategoryResumeFit, Score: 80, Weight: 0.3},
		{Category: CategoryHardSkills, Score: 70, Weight: 0.4},
		{Category: CategorySoftSkills, Score: 90, Weight: 0.3},
	}

	conf := 0.9
	sum, err := Aggregate(scores, &conf)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	want := 80*0.3 + 70*0.4 + 90*0.3
	if math.Abs(sum.OverallScore-want) > 1e-9 {
		t.Fatalf("expected overall %.2f, got %.2f", want, sum.OverallScore)
	}
	if sum.AIConfidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", sum.AIConfidence)
	}
	if len(sum.Breakdown) != 3 || sum.Breakdown["hard_skills"] != 70 {
		t.Fatalf("unexpected breakdown: %v", sum.Breakdown)
	}
}

func TestAggregate_PartialScores(t *testing.T) {
	// Only one stage was scored before the session ended. The missing
	// categories carry no weight, they are not zeros.
	scores := []EvaluationScore{
		{Category: CategoryResumeFit, Score: 20, Weight: 0.3},
	}

	sum, err := Aggregate(scores, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if sum.OverallScore != 20 {
		t.Fatalf("expected overall 20, got %v", sum.OverallScore)
	}
	if sum.AIConfidence != DefaultConfidence {
		t.Fatalf("expected default confidence, got %v", sum.AIConfidence)
	}
}

func TestAggregate_ZeroWeightDefaultsToOne(t *testing.T) {
	scores := []EvaluationScore{
		{Category: CategoryResumeFit, Score: 60},
		{Category: CategoryHardSkills, Score: 80},
	}

	sum, err := Aggregate(scores, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if sum.OverallScore != 70 {
		t.Fatalf("expected overall 70, got %v", sum.OverallScore)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if _, err := Aggregate(nil, nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAggregate_Reasoning(t *testing.T) {
	expl := "Strong alignment with job requirements"
	scores := []EvaluationScore{
		{Category: CategoryResumeFit, Score: 85, Weight: 0.3, Explanation: &expl},
		{Category: CategoryHardSkills, Score: 55, Weight: 0.4},
	}

	sum, err := Aggregate(scores, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(sum.Reasoning) != 2 {
		t.Fatalf("expected 2 reasoning lines, got %d", len(sum.Reasoning))
	}
	if !strings.Contains(sum.Reasoning[0], expl) {
		t.Fatalf("expected explanation in reasoning, got %q", sum.Reasoning[0])
	}
	if !strings.Contains(sum.Reasoning[1], "55.0 out of 100") {
		t.Fatalf("expected fallback line, got %q", sum.Reasoning[1])
	}
	if !strings.Contains(sum.ReasoningText(), "; ") {
		t.Fatalf("expected joined reasoning, got %q", sum.ReasoningText())
	}
}
