package intake

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Recorder Mock ---

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) CreateRun(ctx context.Context, session model.IntakeSession) (*model.IntakeRun, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IntakeRun), args.Error(1)
}

func (m *mockRecorder) UpdateRunStatus(ctx context.Context, runID string, status model.IntakeStatus) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}

func (m *mockRecorder) UpdateRunResult(ctx context.Context, runID string, result *model.IntakeResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

// --- Scripted Client ---

// scriptedClient answers completions per stage, identified by a marker
// substring in the system prompt. Each stage's responses are consumed in
// order so retry behavior can be scripted.
type scriptedClient struct {
	responses map[string][]scriptedResponse
	calls     map[string]int
}

type scriptedResponse struct {
	text string
	err  error
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		responses: make(map[string][]scriptedResponse),
		calls:     make(map[string]int),
	}
}

func (c *scriptedClient) reply(stage, text string) *scriptedClient {
	c.responses[stage] = append(c.responses[stage], scriptedResponse{text: text})
	return c
}

func (c *scriptedClient) fail(stage string, err error) *scriptedClient {
	c.responses[stage] = append(c.responses[stage], scriptedResponse{err: err})
	return c
}

func (c *scriptedClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	stage := stageForPrompt(req.System[0].Text)
	c.calls[stage]++

	queue := c.responses[stage]
	if len(queue) == 0 {
		return nil, context.DeadlineExceeded
	}
	next := queue[0]
	if len(queue) > 1 {
		c.responses[stage] = queue[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: next.text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 25},
	}, nil
}

func stageForPrompt(system string) string {
	switch {
	case strings.Contains(system, "intake classifier"):
		return "classify"
	case strings.Contains(system, "matter details"):
		return "matter"
	case strings.Contains(system, "contact information"):
		return "contact"
	case strings.Contains(system, "assess the quality"):
		return "quality"
	case strings.Contains(system, "routed"):
		return "decide"
	default:
		return "unknown"
	}
}

// --- Ensure interface compliance ---
var (
	_ anthropic.Client = (*mockAnthropicClient)(nil)
	_ anthropic.Client = (*scriptedClient)(nil)
	_ RunRecorder      = (*mockRecorder)(nil)
)
