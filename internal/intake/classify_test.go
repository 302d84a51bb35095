package intake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestClassifyStage_ValidResponse(t *testing.T) {
	st := &State{Session: model.IntakeSession{Message: "I want to file for divorce"}}
	stage := &classifyStage{threshold: 0.5}

	err := stage.HandleResponse(st, `{"workflow": "matter_creation", "confidence": 0.93, "reasoning": "client wants representation"}`)
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowMatterCreation, st.Workflow.Workflow)
	assert.InDelta(t, 0.93, st.Workflow.Confidence, 0.001)
}

func TestClassifyStage_CaseDriftInWorkflow(t *testing.T) {
	st := &State{}
	stage := &classifyStage{threshold: 0.5}

	err := stage.HandleResponse(st, `{"workflow": "APPOINTMENT_REQUEST", "confidence": 0.8}`)
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowAppointmentRequest, st.Workflow.Workflow)
}

func TestClassifyStage_UnknownWorkflow(t *testing.T) {
	st := &State{}
	stage := &classifyStage{threshold: 0.5}

	err := stage.HandleResponse(st, `{"workflow": "lawsuit", "confidence": 0.8}`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Nil(t, st.Workflow)
}

func TestClassifyStage_LowConfidence(t *testing.T) {
	st := &State{}
	stage := &classifyStage{threshold: 0.5}

	err := stage.HandleResponse(st, `{"workflow": "matter_creation", "confidence": 0.3}`)
	var lce *lowConfidenceError
	require.ErrorAs(t, err, &lce)
	assert.Nil(t, st.Workflow)

	stage.Fallback(st, err)
	assert.Equal(t, model.WorkflowGeneralInquiry, st.Workflow.Workflow)
	assert.InDelta(t, 0.3, st.Workflow.Confidence, 0.001)
}

func TestClassifyStage_ConfidenceClamped(t *testing.T) {
	st := &State{}
	stage := &classifyStage{threshold: 0.5}

	err := stage.HandleResponse(st, `{"workflow": "other", "confidence": 1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Workflow.Confidence)
}

func TestClassifyStage_FallbackOnTransportFailure(t *testing.T) {
	st := &State{}
	stage := &classifyStage{threshold: 0.5}

	stage.Fallback(st, &ModelUnavailableError{Err: errors.New("overloaded")})
	assert.Equal(t, model.WorkflowGeneralInquiry, st.Workflow.Workflow)
	assert.Equal(t, 0.0, st.Workflow.Confidence)
}
