package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
)

var (
	runMessage string
	runTeamID  string
	runSession string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one intake message through the pipeline",
	Long: `Runs a single client message through workflow classification, matter and
contact extraction, quality scoring, and action decision, then dispatches the
decided intake to the configured handoff targets. The structured result is
written to stdout as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		env, err := initIntake(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sessionID := runSession
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		result, err := env.Orchestrator.Run(ctx, model.IntakeSession{
			SessionID: sessionID,
			TeamID:    runTeamID,
			Message:   runMessage,
		})
		if err != nil {
			return err
		}

		outcome := env.Dispatcher.Dispatch(ctx, result)
		if outcome.NotionPageID != "" {
			zap.L().Info("review page created", zap.String("page_id", outcome.NotionPageID))
		}
		if outcome.SalesforceID != "" {
			zap.L().Info("salesforce lead created", zap.String("lead_id", outcome.SalesforceID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runMessage, "message", "m", "", "client message to process (required)")
	runCmd.Flags().StringVarP(&runTeamID, "team", "t", "", "team ID owning this intake")
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "session ID (generated if omitted)")
	_ = runCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(runCmd)
}
