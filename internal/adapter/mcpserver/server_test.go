package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"browser-use-gologin/internal/domain/entity"
	"browser-use-gologin/internal/infrastructure/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRunner struct {
	requests []entity.TaskRequest
	summary  *entity.TaskSummary
	err      error
}

func (r *fakeRunner) Run(_ context.Context, req entity.TaskRequest) (*entity.TaskSummary, error) {
	r.requests = append(r.requests, req)
	return r.summary, r.err
}

func exampleSummary() *entity.TaskSummary {
	final := "Example Domain"
	return &entity.TaskSummary{
		Steps: 2,
		Actions: []entity.Action{
			{Name: "go_to_url", Params: map[string]any{"url": "https://example.com"}},
			{Name: "done", Params: map[string]any{"text": "Example Domain"}},
		},
		ExtractedContent: []string{"Navigated to https://example.com", "Example Domain"},
		FinalResult:      &final,
		URLsVisited:      []string{"about:blank", "https://example.com/"},
		IsDone:           true,
		Errors:           []string{},
	}
}

func connect(t *testing.T, runner *fakeRunner) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	srv := New(runner, logger.NewNop())

	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverT, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t, &fakeRunner{})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, res.Tools, 1)
	tool := res.Tools[0]
	assert.Equal(t, "run_task", tool.Name)
	assert.Contains(t, tool.Description, "GoLogin browser session")

	raw, err := json.Marshal(tool.InputSchema)
	require.NoError(t, err)
	var schema struct {
		Type       string                    `json:"type"`
		Required   []string                  `json:"required"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"profile_id", "task"}, schema.Required)
	assert.Equal(t, "number", schema.Properties["max_steps"]["type"])
}

func TestListTools_Idempotent(t *testing.T) {
	cs := connect(t, &fakeRunner{})

	first, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	second, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Tools[0].Name, second.Tools[0].Name)
}

func TestCallTool_Success(t *testing.T) {
	runner := &fakeRunner{summary: exampleSummary()}
	cs := connect(t, runner)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "run_task",
		Arguments: map[string]any{
			"profile_id": "p1",
			"task":       "open example.com and read the title",
			"max_steps":  3,
		},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &payload))
	assert.Equal(t, float64(2), payload["steps"])
	assert.Equal(t, true, payload["is_done"])
	assert.Equal(t, []any{}, payload["errors"])
	assert.Equal(t, "Example Domain", payload["final_result"])
	assert.Len(t, payload["actions"], 2)
	for _, key := range []string{"steps", "actions", "extracted_content", "final_result", "urls_visited", "is_done", "errors"} {
		assert.Contains(t, payload, key)
	}

	require.Len(t, runner.requests, 1)
	assert.Equal(t, entity.TaskRequest{ProfileID: "p1", Task: "open example.com and read the title", MaxSteps: 3}, runner.requests[0])
}

func TestCallTool_MaxStepsOmitted(t *testing.T) {
	runner := &fakeRunner{summary: exampleSummary()}
	cs := connect(t, runner)

	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_task",
		Arguments: map[string]any{"profile_id": "p1", "task": "t"},
	})
	require.NoError(t, err)

	require.Len(t, runner.requests, 1)
	assert.Zero(t, runner.requests[0].MaxSteps)
}

func TestCallTool_FractionalMaxSteps(t *testing.T) {
	runner := &fakeRunner{summary: exampleSummary()}
	cs := connect(t, runner)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_task",
		Arguments: map[string]any{"profile_id": "p1", "task": "t", "max_steps": 2.5},
	})
	require.NoError(t, err)

	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "max_steps must be a positive integer")
	assert.Empty(t, runner.requests)
}

func TestCallTool_MissingRequiredArgument(t *testing.T) {
	runner := &fakeRunner{summary: exampleSummary()}
	cs := connect(t, runner)

	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_task",
		Arguments: map[string]any{"task": "t"},
	})

	assert.Error(t, err)
	assert.Empty(t, runner.requests)
}

func TestCallTool_RunnerError(t *testing.T) {
	runner := &fakeRunner{err: entity.NewOrchestrationError(errors.New("upload cookies: 401"))}
	cs := connect(t, runner)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_task",
		Arguments: map[string]any{"profile_id": "p1", "task": "t"},
	})
	require.NoError(t, err)

	assert.True(t, res.IsError)
	assert.Equal(t, "error processing task: upload cookies: 401", textOf(t, res))
}

func TestRunTaskArgs_Request(t *testing.T) {
	three := 3.0
	req, err := runTaskArgs{ProfileID: "p", Task: "t", MaxSteps: &three}.request()
	require.NoError(t, err)
	assert.Equal(t, 3, req.MaxSteps)

	negative := -1.0
	_, err = runTaskArgs{ProfileID: "p", Task: "t", MaxSteps: &negative}.request()
	assert.ErrorIs(t, err, entity.ErrArgument)
}

func TestHandler_Healthz(t *testing.T) {
	srv := New(&fakeRunner{}, logger.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServeHTTP_StopsOnCancel(t *testing.T) {
	srv := New(&fakeRunner{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeHTTP(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
