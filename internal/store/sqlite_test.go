package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testSession() model.IntakeSession {
	return model.IntakeSession{
		SessionID: "sess-1",
		TeamID:    "team-1",
		Message:   "I need help with a divorce. jane@example.com",
	}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testSession())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.StatusPending, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, testSession(), got.Session)
	assert.Nil(t, got.Result)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testSession())
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.StatusClassified))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClassified, got.Status)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "missing-run", model.StatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testSession())
	require.NoError(t, err)

	result := &model.IntakeResult{
		SessionID: "sess-1",
		TeamID:    "team-1",
		Status:    model.StatusDecided,
		Workflow:  model.WorkflowClassification{Workflow: model.WorkflowMatterCreation, Confidence: 0.9},
		Action:    model.ActionDecision{Action: model.ActionRequestLawyerApproval, Priority: model.PriorityHigh},
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDecided, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, model.WorkflowMatterCreation, got.Result.Workflow.Workflow)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing-run")
	require.Error(t, err)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, model.IntakeSession{SessionID: "a", TeamID: "team-a", Message: "m"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.IntakeSession{SessionID: "b", TeamID: "team-b", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.StatusDecided))

	byTeam, err := st.ListRuns(ctx, RunFilter{TeamID: "team-a"})
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
	assert.Equal(t, a.ID, byTeam[0].ID)

	byStatus, err := st.ListRuns(ctx, RunFilter{Status: model.StatusDecided})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, a.ID, byStatus[0].ID)

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := st.ListRuns(ctx, RunFilter{CreatedAfter: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := st.CreateRun(ctx, testSession())
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
