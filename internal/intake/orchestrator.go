package intake

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/cost"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/resilience"
	"github.com/sells-group/intake-cli/pkg/anthropic"
)

// Config controls model selection and failure policy for the pipeline.
type Config struct {
	// Model is the completion model ID. Required.
	Model string

	// MaxTokens caps each completion. Default: 1024.
	MaxTokens int64

	// ConfidenceThreshold is the minimum trusted classification confidence.
	// Default: 0.5.
	ConfidenceThreshold float64

	// CompletionMaxAttempts is the total number of transport-level attempts
	// per completion call. Default: 2.
	CompletionMaxAttempts int

	// RequestTimeout bounds each individual completion call. Default: 20s.
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1024
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.5
	}
	if c.CompletionMaxAttempts <= 0 {
		c.CompletionMaxAttempts = 2
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 20 * time.Second
	}
	return c
}

// RunRecorder persists run state transitions. All methods are best-effort
// from the pipeline's point of view: persistence failures are logged, never
// fatal to the intake itself.
type RunRecorder interface {
	CreateRun(ctx context.Context, session model.IntakeSession) (*model.IntakeRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.IntakeStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.IntakeResult) error
}

// Orchestrator drives one intake session through the five pipeline stages.
type Orchestrator struct {
	client   anthropic.Client
	recorder RunRecorder
	prompts  Prompts
	cfg      Config
	costs    *cost.Calculator
}

// New builds an orchestrator. recorder may be nil for ephemeral runs.
func New(client anthropic.Client, recorder RunRecorder, prompts Prompts, cfg Config) (*Orchestrator, error) {
	if client == nil {
		return nil, &ConfigError{Detail: "completion client is required"}
	}
	if cfg.Model == "" {
		return nil, &ConfigError{Detail: "no model configured"}
	}
	if cfg.ConfidenceThreshold > 1 {
		return nil, &ConfigError{Detail: "confidence threshold must be at most 1.0"}
	}
	return &Orchestrator{
		client:   client,
		recorder: recorder,
		prompts:  prompts,
		cfg:      cfg.withDefaults(),
		costs:    cost.NewCalculator(),
	}, nil
}

func (o *Orchestrator) stages() []Stage {
	return []Stage{
		&classifyStage{threshold: o.cfg.ConfidenceThreshold},
		&matterStage{},
		&contactStage{},
		&qualityStage{},
		&decideStage{},
	}
}

// Run executes the full pipeline for one session. It returns a result for
// every run that reaches a decision, degraded or not; it returns an error
// only for validation failures, cancellation, or misconfiguration.
func (o *Orchestrator) Run(ctx context.Context, session model.IntakeSession) (*model.IntakeResult, error) {
	log := zap.L().With(
		zap.String("session_id", session.SessionID),
		zap.String("team_id", session.TeamID),
	)
	if session.Message == "" {
		return nil, &ValidationError{Code: "empty_message", Detail: "intake message is empty"}
	}

	runID := o.createRun(ctx, session, log)

	st := &State{Session: session}
	for _, stage := range o.stages() {
		if stage.Skip(st) {
			log.Debug("stage skipped", zap.String("stage", stage.Name()))
			o.recordStatus(ctx, runID, stage.Status(), log)
			continue
		}

		if err := o.runStage(ctx, stage, st, log); err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "intake: run canceled")
			}
			kind := failureKind(err)
			stage.Fallback(st, err)
			st.Degraded = true
			st.Failures = append(st.Failures, model.StageFailure{
				Stage:    stage.Name(),
				Kind:     kind,
				Error:    err.Error(),
				Fallback: "default_record",
			})
			log.Warn("stage degraded to default record",
				zap.String("stage", stage.Name()),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}

		if err := stage.Validate(st); err != nil {
			o.recordStatus(ctx, runID, model.StatusFailed, log)
			log.Warn("intake failed validation",
				zap.String("stage", stage.Name()),
				zap.Error(err),
			)
			return nil, err
		}
		o.recordStatus(ctx, runID, stage.Status(), log)
	}

	o.enforceReviewPolicy(st, log)

	result := o.buildResult(st)
	o.recordResult(ctx, runID, result, log)

	log.Info("intake decided",
		zap.String("workflow", string(result.Workflow.Workflow)),
		zap.String("action", string(result.Action.Action)),
		zap.Int("quality_score", result.Quality.QualityScore),
		zap.Bool("degraded", result.Degraded),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Float64("total_cost", result.TotalCost),
	)
	return result, nil
}

// runStage runs one completion round trip, retrying the stage from scratch
// up to its ParseRetries budget. The same prompt is reissued on every
// attempt; the retry is for backend flakiness and malformed output, not for
// prompt repair.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, st *State, log *zap.Logger) error {
	system, user := stage.BuildPrompt(st, o.prompts)

	var err error
	for attempt := 0; attempt <= stage.ParseRetries(); attempt++ {
		var raw string
		raw, err = o.complete(ctx, system, user, st)
		if err == nil {
			err = stage.HandleResponse(st, raw)
		}
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}

		// Low confidence is a policy outcome, not noise; asking again would
		// just launder the uncertainty.
		var lce *lowConfidenceError
		if errors.As(err, &lce) {
			return err
		}

		if attempt < stage.ParseRetries() {
			log.Warn("retrying stage",
				zap.String("stage", stage.Name()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
	}
	return err
}

func (o *Orchestrator) complete(ctx context.Context, system, user string, st *State) (string, error) {
	req := anthropic.MessageRequest{
		Model:     o.cfg.Model,
		MaxTokens: o.cfg.MaxTokens,
		System:    []anthropic.SystemBlock{{Text: system}},
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = o.cfg.CompletionMaxAttempts
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "create_message")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()
		return o.client.CreateMessage(callCtx, req)
	})
	if err != nil {
		return "", &ModelUnavailableError{Err: err}
	}

	st.Usage.Add(resp.Usage)
	return extractText(resp), nil
}

// enforceReviewPolicy downgrades escalate/reject decisions on intakes that
// require human review: a human has to see the intake before any terminal
// routing happens.
func (o *Orchestrator) enforceReviewPolicy(st *State, log *zap.Logger) {
	if st.Quality == nil || st.Action == nil || !st.Quality.RequiresHumanReview {
		return
	}
	switch st.Action.Action {
	case model.ActionEscalate, model.ActionReject:
		log.Info("overriding terminal action for reviewed intake",
			zap.String("from", string(st.Action.Action)),
		)
		st.Action.Action = model.ActionRequestLawyerApproval
	}
}

func (o *Orchestrator) buildResult(st *State) *model.IntakeResult {
	result := &model.IntakeResult{
		SessionID:     st.Session.SessionID,
		TeamID:        st.Session.TeamID,
		Status:        model.StatusDecided,
		Workflow:      *st.Workflow,
		Matter:        *st.Matter,
		Contact:       *st.Contact,
		Quality:       *st.Quality,
		Action:        *st.Action,
		Degraded:      st.Degraded,
		StageFailures: st.Failures,
		TotalTokens:   st.Usage.Total(),
	}
	result.TotalCost = o.costs.Claude(o.cfg.Model, int(st.Usage.InputTokens), int(st.Usage.OutputTokens))
	return result
}

func (o *Orchestrator) createRun(ctx context.Context, session model.IntakeSession, log *zap.Logger) string {
	if o.recorder == nil {
		return ""
	}
	run, err := o.recorder.CreateRun(ctx, session)
	if err != nil {
		log.Warn("failed to persist run", zap.Error(err))
		return ""
	}
	return run.ID
}

func (o *Orchestrator) recordStatus(ctx context.Context, runID string, status model.IntakeStatus, log *zap.Logger) {
	if o.recorder == nil || runID == "" {
		return
	}
	if err := o.recorder.UpdateRunStatus(ctx, runID, status); err != nil {
		log.Warn("failed to persist run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) recordResult(ctx context.Context, runID string, result *model.IntakeResult, log *zap.Logger) {
	if o.recorder == nil || runID == "" {
		return
	}
	if err := o.recorder.UpdateRunResult(ctx, runID, result); err != nil {
		log.Warn("failed to persist run result",
			zap.String("run_id", runID),
			zap.Error(err),
		)
	}
}

func failureKind(err error) model.FailureKind {
	var (
		mue *ModelUnavailableError
		lce *lowConfidenceError
	)
	switch {
	case errors.As(err, &mue):
		return model.FailureModelUnavailable
	case errors.As(err, &lce):
		return model.FailureLowConfidence
	default:
		return model.FailureParse
	}
}
