package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityStage_ValidResponse(t *testing.T) {
	st := &State{}
	stage := &qualityStage{}

	err := stage.HandleResponse(st, `{"quality_score": 82, "completeness_score": 75, "clarity_score": 90, "requires_human_review": false, "recommendations": ["ask for opposing party name"]}`)
	require.NoError(t, err)
	assert.Equal(t, 82, st.Quality.QualityScore)
	assert.False(t, st.Quality.RequiresHumanReview)
	assert.Len(t, st.Quality.Recommendations, 1)
}

func TestQualityStage_ScoresClamped(t *testing.T) {
	st := &State{}
	stage := &qualityStage{}

	err := stage.HandleResponse(st, `{"quality_score": 140, "completeness_score": -10, "clarity_score": 60}`)
	require.NoError(t, err)
	assert.Equal(t, 100, st.Quality.QualityScore)
	assert.Equal(t, 0, st.Quality.CompletenessScore)
	assert.Equal(t, 60, st.Quality.ClarityScore)
}

func TestQualityStage_LowCompletenessForcesReview(t *testing.T) {
	st := &State{}
	stage := &qualityStage{}

	err := stage.HandleResponse(st, `{"quality_score": 70, "completeness_score": 40, "clarity_score": 80, "requires_human_review": false}`)
	require.NoError(t, err)
	assert.True(t, st.Quality.RequiresHumanReview)
}

func TestQualityStage_FallbackForcesReview(t *testing.T) {
	st := &State{}
	stage := &qualityStage{}

	stage.Fallback(st, &ParseError{Detail: "truncated"})
	assert.Equal(t, 0, st.Quality.QualityScore)
	assert.True(t, st.Quality.RequiresHumanReview)
	assert.NotEmpty(t, st.Quality.Recommendations)
}
