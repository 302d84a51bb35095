package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/handoff"
	"github.com/sells-group/intake-cli/internal/intake"
	"github.com/sells-group/intake-cli/internal/store"
	anthropicpkg "github.com/sells-group/intake-cli/pkg/anthropic"
	"github.com/sells-group/intake-cli/pkg/notion"
	sfpkg "github.com/sells-group/intake-cli/pkg/salesforce"
)

// intakeEnv holds the initialized store, orchestrator, and dispatcher needed
// by the run/batch/serve commands.
type intakeEnv struct {
	Store        store.Store
	Orchestrator *intake.Orchestrator
	Dispatcher   *handoff.Dispatcher
}

// Close releases resources held by the environment.
func (e *intakeEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured store and ensures the schema exists, so
// read-only commands work against a fresh database too.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intake.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

// initIntake sets up the store, the completion client, and the handoff
// targets. Callers should defer env.Close().
func initIntake(ctx context.Context) (*intakeEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key,
		anthropicpkg.WithRateLimit(cfg.Anthropic.RequestsPerSec),
	)

	prompts, err := intake.LoadPrompts(cfg.Intake.PromptsPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	orch, err := intake.New(client, st, prompts, intake.Config{
		Model:                 cfg.Anthropic.Model,
		MaxTokens:             cfg.Anthropic.MaxTokens,
		ConfidenceThreshold:   cfg.Intake.ConfidenceThreshold,
		CompletionMaxAttempts: cfg.Anthropic.MaxAttempts,
		RequestTimeout:        time.Duration(cfg.Anthropic.RequestTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var notionClient notion.Client
	if cfg.Notion.Token != "" {
		notionClient = notion.NewClient(cfg.Notion.Token)
	} else {
		zap.L().Debug("INTAKE_NOTION_TOKEN not set, review board handoff disabled")
	}

	var sfClient sfpkg.Client
	if cfg.Salesforce.ClientID != "" {
		sfClient, err = initSalesforce()
		if err != nil {
			zap.L().Warn("salesforce init failed, lead handoff disabled", zap.Error(err))
			sfClient = nil
		}
	}

	dispatcher := handoff.New(notionClient, sfClient, handoff.Config{
		NotionReviewDB: cfg.Notion.ReviewDB,
		WebhookURL:     cfg.Handoff.WebhookURL,
	})

	return &intakeEnv{
		Store:        st,
		Orchestrator: orch,
		Dispatcher:   dispatcher,
	}, nil
}
