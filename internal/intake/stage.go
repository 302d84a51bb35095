package intake

import (
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/pkg/anthropic"
)

// State carries the records accumulated across the stages of one intake run.
// Each stage installs exactly one record and never touches a prior stage's
// output; later prompts are built from the whole accumulated state.
type State struct {
	Session  model.IntakeSession
	Workflow *model.WorkflowClassification
	Matter   *model.MatterExtraction
	Contact  *model.ContactExtraction
	Quality  *model.QualityAssessment
	Action   *model.ActionDecision

	Degraded bool
	Failures []model.StageFailure
	Usage    anthropic.TokenUsage
}

// Stage is one model-driven step of the intake pipeline. The orchestrator
// sequences the closed set of five stages in fixed order; no stage runs out
// of order or is skipped except via its own Skip.
type Stage interface {
	Name() string

	// Status is the session state entered when the stage completes.
	Status() model.IntakeStatus

	// Skip reports whether the stage is short-circuited for this session.
	// A skipping stage installs its placeholder record before returning true.
	Skip(st *State) bool

	// BuildPrompt constructs the system and user prompts from the session
	// and all prior stage outputs.
	BuildPrompt(st *State, prompts Prompts) (system, user string)

	// HandleResponse parses the raw completion text and installs the stage's
	// record. It never partially populates state: on error, state is
	// unchanged.
	HandleResponse(st *State, raw string) error

	// Validate checks the installed record after HandleResponse or Fallback.
	// A non-nil error is fatal and propagates to the caller.
	Validate(st *State) error

	// Fallback installs the stage's documented default record after an
	// unrecoverable completion or parse failure.
	Fallback(st *State, cause error)

	// ParseRetries is the number of extra completion attempts allowed after
	// a recoverable failure at this stage.
	ParseRetries() int
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
