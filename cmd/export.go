package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/intake-cli/internal/export"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/store"
)

var (
	exportStatus string
	exportTeamID string
	exportSince  string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export <output.xlsx>",
	Short: "Export intake runs to an XLSX file",
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

		filter := store.RunFilter{
			Status: model.IntakeStatus(exportStatus),
			TeamID: exportTeamID,
			Limit:  exportLimit,
		}
		if exportSince != "" {
			since, err := time.ParseDuration(exportSince)
			if err != nil {
				return fmt.Errorf("invalid --since duration: %w", err)
			}
			filter.CreatedAfter = time.Now().Add(-since)
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return err
		}

		if err := export.WriteRunsXLSX(args[0], runs); err != nil {
			return err
		}

		fmt.Printf("Exported %d runs to %s\n", len(runs), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "filter by status")
	exportCmd.Flags().StringVar(&exportTeamID, "team", "", "filter by team ID")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only runs newer than this duration (e.g. 168h)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "maximum runs to export")
	rootCmd.AddCommand(exportCmd)
}
