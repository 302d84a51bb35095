package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestDecideStage_ValidResponse(t *testing.T) {
	st := &State{}
	stage := &decideStage{}

	err := stage.HandleResponse(st, `{"action": "request_lawyer_approval", "priority": "high", "reasoning": "strong matter with full contact details"}`)
	require.NoError(t, err)
	assert.Equal(t, model.ActionRequestLawyerApproval, st.Action.Action)
	assert.Equal(t, model.PriorityHigh, st.Action.Priority)
}

func TestDecideStage_UnknownAction(t *testing.T) {
	st := &State{}
	stage := &decideStage{}

	err := stage.HandleResponse(st, `{"action": "schedule_meeting", "priority": "low"}`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Nil(t, st.Action)
}

func TestDecideStage_UnknownPriorityDefaultsMedium(t *testing.T) {
	st := &State{}
	stage := &decideStage{}

	err := stage.HandleResponse(st, `{"action": "request_more_info", "priority": "urgent"}`)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, st.Action.Priority)
}

func TestDecideStage_FallbackRoutesReviewedIntakeToHuman(t *testing.T) {
	st := &State{Quality: &model.QualityAssessment{RequiresHumanReview: true}}
	stage := &decideStage{}

	stage.Fallback(st, &ParseError{Detail: "no JSON object in completion text"})
	assert.Equal(t, model.ActionRequestLawyerApproval, st.Action.Action)
	assert.Equal(t, model.PriorityMedium, st.Action.Priority)
}

func TestDecideStage_FallbackAsksClientWhenNoReview(t *testing.T) {
	st := &State{Quality: &model.QualityAssessment{QualityScore: 80}}
	stage := &decideStage{}

	stage.Fallback(st, &ParseError{Detail: "truncated"})
	assert.Equal(t, model.ActionRequestMoreInfo, st.Action.Action)
}
