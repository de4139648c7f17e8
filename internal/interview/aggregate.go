package interview

import (
	"fmt"
	"strings"
	"time"
)

// DefaultConfidence is used when the concluding oracle call supplied no
// confidence figure.
const DefaultConfidence = 0.5

// Aggregate combines the stage scores present for a session into one
// summary. Missing categories simply carry no weight; they are not
// treated as zero. confidence may be nil.
func Aggregate(scores []EvaluationScore, confidence *float64) (*EvaluationSummary, error) {
	if len(scores) == 0 {
		return nil, ErrInsufficientData
	}

	var weightedSum, weightSum float64
	breakdown := make(map[string]float64, len(scores))
	reasoning := make([]string, 0, len(scores))

	for _, s := range scores {
		w := s.Weight
		if w <= 0 {
			w = 1.0
		}
		weightedSum += s.Score * w
		weightSum += w
		breakdown[string(s.Category)] = s.Score
		reasoning = append(reasoning, reasoningLine(s))
	}

	conf := DefaultConfidence
	if confidence != nil {
		conf = *confidence
	}

	return &EvaluationSummary{
		OverallScore: weightedSum / weightSum,
		Breakdown:    breakdown,
		Reasoning:    reasoning,
		AIConfidence: conf,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func reasoningLine(s EvaluationScore) string {
	if s.Explanation != nil && *s.Explanation != "" {
		return fmt.Sprintf("%s: %s", displayCategory(s.Category), *s.Explanation)
	}
	return fmt.Sprintf("%s: scored %.1f out of 100", displayCategory(s.Category), s.Score)
}

func displayCategory(c Category) string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// ReasoningText flattens the reasoning lines into one explanation
// string for report views.
func (s *EvaluationSummary) ReasoningText() string {
	return strings.Join(s.Reasoning, "; ")
}
