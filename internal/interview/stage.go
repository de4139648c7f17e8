package interview

import (
	"fmt"

	"github.com/hireloop/ai-interviewer/internal/ai"
)

type TransitionKind int

const (
	// TransitionStay: remain in the stage, no score recorded.
	TransitionStay TransitionKind = iota
	// TransitionAdvance: record the stage score, move to the next stage.
	TransitionAdvance
	// TransitionConclude: record the final stage score, complete the
	// session and aggregate.
	TransitionConclude
	// TransitionAbort: premature conclude from a non-final stage; record
	// the score for the current stage only and abort.
	TransitionAbort
)

type Transition struct {
	Kind      TransitionKind
	Score     float64 // meaningful unless Kind == TransitionStay
	NextStage Stage   // meaningful only for TransitionAdvance
}

// EvaluateTransition is the pure stage state machine: given the current
// stage and a validated oracle outcome it decides stay / advance /
// conclude / abort. Scores are clamped to [0,100].
func EvaluateTransition(stage Stage, out *ai.Outcome) (Transition, error) {
	if stage == StageFinished {
		return Transition{}, fmt.Errorf("stage machine: %s is terminal", stage)
	}
	if err := out.Validate(); err != nil {
		return Transition{}, err
	}

	switch out.Directive {
	case ai.DirectiveContinue:
		return Transition{Kind: TransitionStay}, nil

	case ai.DirectiveAdvance:
		next, ok := stage.Next()
		if !ok {
			return Transition{}, fmt.Errorf("stage machine: no stage after %s", stage)
		}
		if next == StageFinished {
			// Advancing out of the final stage concludes the interview.
			return Transition{Kind: TransitionConclude, Score: clampScore(*out.Score)}, nil
		}
		return Transition{Kind: TransitionAdvance, Score: clampScore(*out.Score), NextStage: next}, nil

	case ai.DirectiveConclude:
		if stage == StageSoftSkills {
			return Transition{Kind: TransitionConclude, Score: clampScore(*out.Score)}, nil
		}
		// Disqualifying conclude before the final stage.
		return Transition{Kind: TransitionAbort, Score: clampScore(*out.Score)}, nil

	default:
		return Transition{}, fmt.Errorf("stage machine: unknown directive %q", out.Directive)
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// CategoryForStage maps an interview stage to its score category.
func CategoryForStage(s Stage) (Category, bool) {
	switch s {
	case StageResumeFit:
		return CategoryResumeFit, true
	case StageHardSkills:
		return CategoryHardSkills, true
	case StageSoftSkills:
		return CategorySoftSkills, true
	default:
		return "", false
	}
}
