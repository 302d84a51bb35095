// Package monitoring aggregates intake run metrics for the metrics endpoint
// and CLI status output.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of intake health.
type MetricsSnapshot struct {
	// Run counts within the lookback window.
	Total      int `json:"total"`
	Decided    int `json:"decided"`
	Failed     int `json:"failed"`
	InProgress int `json:"in_progress"`

	// Rates over finished runs.
	FailRate     float64 `json:"fail_rate"`
	DegradedRate float64 `json:"degraded_rate"`

	// Quality and spend over decided runs.
	AvgQualityScore float64 `json:"avg_quality_score"`
	AvgTokens       int     `json:"avg_tokens"`
	CostUSD         float64 `json:"cost_usd"`

	// Distribution of routing decisions.
	Actions map[model.Action]int `json:"actions"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of intake metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		Actions:       make(map[model.Action]int),
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.Total = len(runs)
	var totalQuality float64
	var totalTokens int
	var degraded int

	for _, r := range runs {
		switch r.Status {
		case model.StatusDecided:
			snap.Decided++
		case model.StatusFailed:
			snap.Failed++
		default:
			snap.InProgress++
		}
		if r.Result == nil {
			continue
		}
		snap.CostUSD += r.Result.TotalCost
		totalTokens += r.Result.TotalTokens
		totalQuality += float64(r.Result.Quality.QualityScore)
		if r.Result.Degraded {
			degraded++
		}
		if r.Result.Action.Action != "" {
			snap.Actions[r.Result.Action.Action]++
		}
	}

	finished := snap.Decided + snap.Failed
	if finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	if snap.Decided > 0 {
		snap.DegradedRate = float64(degraded) / float64(snap.Decided)
		snap.AvgQualityScore = totalQuality / float64(snap.Decided)
		snap.AvgTokens = totalTokens / snap.Decided
	}

	return snap, nil
}
