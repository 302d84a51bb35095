// Package store persists intake runs behind a driver-agnostic interface.
package store

import (
	"context"
	"time"

	"github.com/sells-group/intake-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.IntakeStatus `json:"status,omitempty"`
	TeamID       string             `json:"team_id,omitempty"`
	CreatedAfter time.Time          `json:"created_after,omitempty"`
	Limit        int                `json:"limit,omitempty"`
	Offset       int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for intake runs.
type Store interface {
	CreateRun(ctx context.Context, session model.IntakeSession) (*model.IntakeRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.IntakeStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.IntakeResult) error
	GetRun(ctx context.Context, runID string) (*model.IntakeRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.IntakeRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
