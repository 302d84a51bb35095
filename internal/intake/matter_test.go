package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestMatterStage_SkipsNonMatterWorkflows(t *testing.T) {
	stage := &matterStage{}

	for _, workflow := range []model.Workflow{
		model.WorkflowGeneralInquiry,
		model.WorkflowAppointmentRequest,
		model.WorkflowOther,
	} {
		st := &State{Workflow: &model.WorkflowClassification{Workflow: workflow}}
		assert.True(t, stage.Skip(st), string(workflow))
		require.NotNil(t, st.Matter)
		assert.Equal(t, model.MatterExtraction{}, *st.Matter)
	}
}

func TestMatterStage_RunsForMatterCreation(t *testing.T) {
	stage := &matterStage{}
	st := &State{Workflow: &model.WorkflowClassification{Workflow: model.WorkflowMatterCreation}}
	assert.False(t, stage.Skip(st))
	assert.Nil(t, st.Matter)
}

func TestMatterStage_ValidResponse(t *testing.T) {
	st := &State{}
	stage := &matterStage{}

	err := stage.HandleResponse(st, `{"matter_type": "Family Law", "urgency": "high", "complexity": 6, "intent": "divorce with custody", "estimated_value": 15000}`)
	require.NoError(t, err)
	assert.Equal(t, "Family Law", st.Matter.MatterType)
	assert.Equal(t, model.UrgencyHigh, st.Matter.Urgency)
	assert.Equal(t, 6, st.Matter.Complexity)
	assert.Equal(t, 15000.0, st.Matter.EstimatedValue)
}

func TestMatterStage_ClampsOutOfRangeValues(t *testing.T) {
	st := &State{}
	stage := &matterStage{}

	err := stage.HandleResponse(st, `{"matter_type": "Traffic", "urgency": "low", "complexity": 14, "estimated_value": -200}`)
	require.NoError(t, err)
	assert.Equal(t, 10, st.Matter.Complexity)
	assert.Equal(t, 0.0, st.Matter.EstimatedValue)
}

func TestMatterStage_MissingMatterType(t *testing.T) {
	st := &State{}
	stage := &matterStage{}

	err := stage.HandleResponse(st, `{"urgency": "low", "complexity": 2}`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Nil(t, st.Matter)
}

func TestMatterStage_UnknownUrgency(t *testing.T) {
	st := &State{}
	stage := &matterStage{}

	err := stage.HandleResponse(st, `{"matter_type": "Family Law", "urgency": "immediately", "complexity": 3}`)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestMatterStage_FallbackRecord(t *testing.T) {
	st := &State{}
	stage := &matterStage{}

	stage.Fallback(st, &ParseError{Detail: "no JSON object in completion text"})
	assert.Equal(t, model.MatterExtraction{
		MatterType: "Unknown",
		Urgency:    model.UrgencyMedium,
		Complexity: 5,
	}, *st.Matter)
}

func TestMatterStage_OneRetry(t *testing.T) {
	assert.Equal(t, 1, (&matterStage{}).ParseRetries())
	assert.Equal(t, 0, (&classifyStage{}).ParseRetries())
	assert.Equal(t, 0, (&contactStage{}).ParseRetries())
}
