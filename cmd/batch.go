package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intake-cli/internal/model"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <sessions.csv>",
	Short: "Process a CSV of intake messages",
	Long: `Reads intake sessions from a CSV file with a header row of
session_id,team_id,message and runs each through the pipeline concurrently.
Individual failures are logged and counted; they do not abort the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		sessions, err := readSessionsCSV(args[0])
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return eris.New("no sessions in input file")
		}

		env, err := initIntake(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentSessions
		}

		var succeeded, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, session := range sessions {
			g.Go(func() error {
				result, err := env.Orchestrator.Run(gctx, session)
				if err != nil {
					failed.Add(1)
					zap.L().Warn("batch intake failed",
						zap.String("session_id", session.SessionID),
						zap.Error(err),
					)
					return nil // don't abort batch on individual failure
				}
				env.Dispatcher.Dispatch(gctx, result)
				succeeded.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("Processed %d sessions: %d succeeded, %d failed\n",
			len(sessions), succeeded.Load(), failed.Load())
		return nil
	},
}

// readSessionsCSV parses a session CSV. The header row is required; column
// order is taken from it so extra columns are tolerated.
func readSessionsCSV(path string) ([]model.IntakeSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open sessions file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read CSV header")
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	msgIdx, ok := cols["message"]
	if !ok {
		return nil, eris.New("CSV is missing a message column")
	}

	var sessions []model.IntakeSession
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read CSV row")
		}
		if msgIdx >= len(record) || strings.TrimSpace(record[msgIdx]) == "" {
			continue
		}

		session := model.IntakeSession{Message: record[msgIdx]}
		if idx, ok := cols["session_id"]; ok && idx < len(record) {
			session.SessionID = strings.TrimSpace(record[idx])
		}
		if session.SessionID == "" {
			session.SessionID = uuid.New().String()
		}
		if idx, ok := cols["team_id"]; ok && idx < len(record) {
			session.TeamID = strings.TrimSpace(record[idx])
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "concurrent sessions (overrides config)")
	rootCmd.AddCommand(batchCmd)
}
