package intake

import (
	"fmt"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

// decideStage picks the routing action from the scored intake. The review
// override (never auto-escalate or auto-reject an intake flagged for human
// review) is enforced by the orchestrator after this stage so it also covers
// the fallback record.
type decideStage struct{}

func (s *decideStage) Name() string { return "decide" }

func (s *decideStage) Status() model.IntakeStatus { return model.StatusDecided }

func (s *decideStage) Skip(_ *State) bool { return false }

func (s *decideStage) ParseRetries() int { return 0 }

func (s *decideStage) BuildPrompt(st *State, prompts Prompts) (string, string) {
	var b strings.Builder
	if st.Workflow != nil {
		fmt.Fprintf(&b, "Workflow: %s\n", st.Workflow.Workflow)
	}
	if st.Matter != nil && st.Matter.MatterType != "" {
		fmt.Fprintf(&b, "Matter: %s, urgency %s, complexity %d\n",
			st.Matter.MatterType, st.Matter.Urgency, st.Matter.Complexity)
	}
	if st.Quality != nil {
		fmt.Fprintf(&b, "Quality %d/100, completeness %d/100, clarity %d/100, requires_human_review=%t\n",
			st.Quality.QualityScore, st.Quality.CompletenessScore, st.Quality.ClarityScore,
			st.Quality.RequiresHumanReview)
	}
	fmt.Fprintf(&b, "\nClient message:\n%s\n", st.Session.Message)
	return prompts.Decide, b.String()
}

func (s *decideStage) HandleResponse(st *State, raw string) error {
	var rec struct {
		Action    string `json:"action"`
		Priority  string `json:"priority"`
		Reasoning string `json:"reasoning"`
	}
	if err := decodeStage(raw, &rec); err != nil {
		return err
	}

	action := model.Action(strings.ToLower(strings.TrimSpace(rec.Action)))
	if !validAction(action) {
		return &ParseError{Detail: fmt.Sprintf("unknown action %q", rec.Action), Raw: raw}
	}

	priority := model.Priority(strings.ToLower(strings.TrimSpace(rec.Priority)))
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		priority = model.PriorityMedium
	}

	st.Action = &model.ActionDecision{
		Action:    action,
		Priority:  priority,
		Reasoning: rec.Reasoning,
	}
	return nil
}

func (s *decideStage) Validate(_ *State) error { return nil }

// Fallback routes flagged intakes to a lawyer and everything else back to
// the client for more information.
func (s *decideStage) Fallback(st *State, cause error) {
	action := model.ActionRequestMoreInfo
	if st.Quality != nil && st.Quality.RequiresHumanReview {
		action = model.ActionRequestLawyerApproval
	}
	st.Action = &model.ActionDecision{
		Action:    action,
		Priority:  model.PriorityMedium,
		Reasoning: "defaulted: " + cause.Error(),
	}
}

func validAction(a model.Action) bool {
	for _, known := range model.AllActions() {
		if a == known {
			return true
		}
	}
	return false
}
