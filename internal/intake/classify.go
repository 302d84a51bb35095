package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

// classifyStage determines which workflow the client's message belongs to.
// A classification below the confidence threshold is not trusted: the run
// proceeds as a general inquiry and is marked degraded.
type classifyStage struct {
	threshold float64
}

func (s *classifyStage) Name() string { return "classify" }

func (s *classifyStage) Status() model.IntakeStatus { return model.StatusClassified }

func (s *classifyStage) Skip(_ *State) bool { return false }

func (s *classifyStage) ParseRetries() int { return 0 }

func (s *classifyStage) BuildPrompt(st *State, prompts Prompts) (string, string) {
	return prompts.Classify, st.Session.Message
}

func (s *classifyStage) HandleResponse(st *State, raw string) error {
	var rec struct {
		Workflow   string  `json:"workflow"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := decodeStage(raw, &rec); err != nil {
		return err
	}

	workflow := model.Workflow(strings.ToLower(strings.TrimSpace(rec.Workflow)))
	if !validWorkflow(workflow) {
		return &ParseError{Detail: fmt.Sprintf("unknown workflow %q", rec.Workflow), Raw: raw}
	}

	confidence := clampFloat(rec.Confidence, 0, 1)
	if confidence < s.threshold {
		return &lowConfidenceError{confidence: confidence, threshold: s.threshold}
	}

	st.Workflow = &model.WorkflowClassification{
		Workflow:   workflow,
		Confidence: confidence,
		Reasoning:  rec.Reasoning,
	}
	return nil
}

func (s *classifyStage) Validate(_ *State) error { return nil }

func (s *classifyStage) Fallback(st *State, cause error) {
	rec := &model.WorkflowClassification{
		Workflow:  model.WorkflowGeneralInquiry,
		Reasoning: "defaulted: " + cause.Error(),
	}
	// Preserve the observed confidence when the model answered but was not
	// sure enough; transport and parse failures leave it at zero.
	var lce *lowConfidenceError
	if errors.As(cause, &lce) {
		rec.Confidence = lce.confidence
	}
	st.Workflow = rec
}

func validWorkflow(w model.Workflow) bool {
	for _, known := range model.AllWorkflows() {
		if w == known {
			return true
		}
	}
	return false
}
