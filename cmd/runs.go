package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/monitoring"
	"github.com/sells-group/intake-cli/internal/store"
)

var (
	runsStatus   string
	runsTeamID   string
	runsLimit    int
	runsSince    string
	runsLookback int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted intake runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List intake runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("inspect"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.RunFilter{
			Status: model.IntakeStatus(runsStatus),
			TeamID: runsTeamID,
			Limit:  runsLimit,
		}
		if runsSince != "" {
			since, err := time.ParseDuration(runsSince)
			if err != nil {
				return fmt.Errorf("invalid --since duration: %w", err)
			}
			filter.CreatedAfter = time.Now().Add(-since)
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTEAM\tSTATUS\tWORKFLOW\tACTION\tDEGRADED\tCREATED")
		for _, run := range runs {
			workflow, action, degraded := "-", "-", "-"
			if run.Result != nil {
				workflow = string(run.Result.Workflow.Workflow)
				action = string(run.Result.Action.Action)
				degraded = fmt.Sprintf("%t", run.Result.Degraded)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				truncateID(run.ID),
				run.Session.TeamID,
				run.Status,
				workflow,
				action,
				degraded,
				run.CreatedAt.Format(time.RFC3339),
			)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one intake run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("inspect"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate metrics over recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("inspect"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snapshot, err := monitoring.NewCollector(st).Collect(ctx, runsLookback)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Lookback\t%dh\n", snapshot.LookbackHours)
		fmt.Fprintf(w, "Total runs\t%d\n", snapshot.Total)
		fmt.Fprintf(w, "Decided\t%d\n", snapshot.Decided)
		fmt.Fprintf(w, "Failed\t%d\n", snapshot.Failed)
		fmt.Fprintf(w, "In progress\t%d\n", snapshot.InProgress)
		fmt.Fprintf(w, "Fail rate\t%.1f%%\n", snapshot.FailRate*100)
		fmt.Fprintf(w, "Degraded rate\t%.1f%%\n", snapshot.DegradedRate*100)
		fmt.Fprintf(w, "Avg quality\t%.1f\n", snapshot.AvgQualityScore)
		fmt.Fprintf(w, "Avg tokens\t%d\n", snapshot.AvgTokens)
		fmt.Fprintf(w, "Cost\t$%.4f\n", snapshot.CostUSD)
		for action, count := range snapshot.Actions {
			fmt.Fprintf(w, "Action %s\t%d\n", action, count)
		}
		return w.Flush()
	},
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status")
	runsListCmd.Flags().StringVar(&runsTeamID, "team", "", "filter by team ID")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum runs to list")
	runsListCmd.Flags().StringVar(&runsSince, "since", "", "only runs newer than this duration (e.g. 24h)")
	runsStatsCmd.Flags().IntVar(&runsLookback, "lookback", 24, "lookback window in hours")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}
