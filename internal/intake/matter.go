package intake

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

// matterStage extracts structured matter details. It only runs for
// matter_creation workflows; every other workflow gets an empty placeholder
// record so downstream stages see a uniform state shape.
type matterStage struct{}

func (s *matterStage) Name() string { return "matter" }

func (s *matterStage) Status() model.IntakeStatus { return model.StatusMatterDone }

func (s *matterStage) Skip(st *State) bool {
	if st.Workflow != nil && st.Workflow.Workflow == model.WorkflowMatterCreation {
		return false
	}
	st.Matter = &model.MatterExtraction{}
	return true
}

// Matter details feed fee estimates, so this stage alone gets a second
// attempt before defaulting.
func (s *matterStage) ParseRetries() int { return 1 }

func (s *matterStage) BuildPrompt(st *State, prompts Prompts) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Client message:\n%s\n", st.Session.Message)
	if st.Workflow != nil {
		fmt.Fprintf(&b, "\nClassified as %s (confidence %.2f): %s\n",
			st.Workflow.Workflow, st.Workflow.Confidence, st.Workflow.Reasoning)
	}
	return prompts.Matter, b.String()
}

func (s *matterStage) HandleResponse(st *State, raw string) error {
	var rec struct {
		MatterType     string  `json:"mattertype"`
		Urgency        string  `json:"urgency"`
		Complexity     float64 `json:"complexity"`
		Intent         string  `json:"intent"`
		EstimatedValue float64 `json:"estimatedvalue"`
	}
	if err := decodeStage(raw, &rec); err != nil {
		return err
	}

	matterType := strings.TrimSpace(rec.MatterType)
	if matterType == "" {
		return &ParseError{Detail: "missing matter_type", Raw: raw}
	}

	urgency := model.Urgency(strings.ToLower(strings.TrimSpace(rec.Urgency)))
	switch urgency {
	case model.UrgencyLow, model.UrgencyMedium, model.UrgencyHigh:
	default:
		return &ParseError{Detail: fmt.Sprintf("unknown urgency %q", rec.Urgency), Raw: raw}
	}

	st.Matter = &model.MatterExtraction{
		MatterType:     matterType,
		Urgency:        urgency,
		Complexity:     clampInt(int(math.Round(rec.Complexity)), 1, 10),
		Intent:         strings.TrimSpace(rec.Intent),
		EstimatedValue: math.Max(rec.EstimatedValue, 0),
	}
	return nil
}

func (s *matterStage) Validate(_ *State) error { return nil }

func (s *matterStage) Fallback(st *State, _ error) {
	st.Matter = &model.MatterExtraction{
		MatterType:     "Unknown",
		Urgency:        model.UrgencyMedium,
		Complexity:     5,
		EstimatedValue: 0,
	}
}
