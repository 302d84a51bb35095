package intake

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

// qualityStage scores the assembled intake. Scores are clamped to [0,100];
// a completeness score under 50 forces human review no matter what the model
// said, and so does the all-zeros fallback record.
type qualityStage struct{}

const reviewCompletenessFloor = 50

func (s *qualityStage) Name() string { return "quality" }

func (s *qualityStage) Status() model.IntakeStatus { return model.StatusScored }

func (s *qualityStage) Skip(_ *State) bool { return false }

func (s *qualityStage) ParseRetries() int { return 0 }

func (s *qualityStage) BuildPrompt(st *State, prompts Prompts) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Client message:\n%s\n", st.Session.Message)
	if st.Workflow != nil {
		fmt.Fprintf(&b, "\nWorkflow: %s\n", st.Workflow.Workflow)
	}
	if st.Matter != nil {
		if buf, err := json.Marshal(st.Matter); err == nil {
			fmt.Fprintf(&b, "\nExtracted matter:\n%s\n", buf)
		}
	}
	if st.Contact != nil {
		if buf, err := json.Marshal(st.Contact); err == nil {
			fmt.Fprintf(&b, "\nExtracted contact:\n%s\n", buf)
		}
	}
	return prompts.Quality, b.String()
}

func (s *qualityStage) HandleResponse(st *State, raw string) error {
	var rec struct {
		QualityScore        float64  `json:"qualityscore"`
		CompletenessScore   float64  `json:"completenessscore"`
		ClarityScore        float64  `json:"clarityscore"`
		RequiresHumanReview bool     `json:"requireshumanreview"`
		Recommendations     []string `json:"recommendations"`
	}
	if err := decodeStage(raw, &rec); err != nil {
		return err
	}

	quality := &model.QualityAssessment{
		QualityScore:        clampScore(rec.QualityScore),
		CompletenessScore:   clampScore(rec.CompletenessScore),
		ClarityScore:        clampScore(rec.ClarityScore),
		RequiresHumanReview: rec.RequiresHumanReview,
		Recommendations:     rec.Recommendations,
	}
	if quality.CompletenessScore < reviewCompletenessFloor {
		quality.RequiresHumanReview = true
	}
	st.Quality = quality
	return nil
}

func (s *qualityStage) Validate(_ *State) error { return nil }

func (s *qualityStage) Fallback(st *State, _ error) {
	st.Quality = &model.QualityAssessment{
		RequiresHumanReview: true,
		Recommendations:     []string{"automatic quality scoring failed; review this intake manually"},
	}
}

func clampScore(v float64) int {
	return clampInt(int(math.Round(v)), 0, 100)
}
