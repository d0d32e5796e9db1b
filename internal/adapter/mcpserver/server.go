// Package mcpserver exposes the task runner as the run_task MCP tool.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"browser-use-gologin/internal/application/port/input"
	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "browser-use-gologin"
	ServerVersion = "0.1.0"

	runTaskDescription = "Executes a specified task within a secure GoLogin browser session. " +
		"Preloads cookies before execution and saves them to the cloud upon completion. " +
		"Returns the actions performed during the session."
)

var runTaskSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"profile_id": map[string]any{
			"type":        "string",
			"description": "GoLogin profile ID",
		},
		"task": map[string]any{
			"type":        "string",
			"description": "Task to perform in the browser",
		},
		"max_steps": map[string]any{
			"type":        "number",
			"description": "Maximum number of agent steps, default 10",
		},
	},
	"required": []string{"profile_id", "task"},
}

type runTaskArgs struct {
	ProfileID string   `json:"profile_id"`
	Task      string   `json:"task"`
	MaxSteps  *float64 `json:"max_steps,omitempty"`
}

func (a runTaskArgs) request() (entity.TaskRequest, error) {
	req := entity.TaskRequest{ProfileID: a.ProfileID, Task: a.Task}
	if a.MaxSteps != nil {
		n := *a.MaxSteps
		if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
			return req, entity.NewArgumentError("max_steps must be a positive integer, got %v", n)
		}
		req.MaxSteps = int(n)
	}
	return req, nil
}

type Server struct {
	runner input.TaskRunner
	logger output.LoggerPort
	server *mcp.Server
}

func New(runner input.TaskRunner, logger output.LoggerPort) *Server {
	s := &Server{
		runner: runner,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil),
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        entity.ToolRunTask.String(),
		Description: runTaskDescription,
		InputSchema: runTaskSchema,
	}, s.runTask)
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

func (s *Server) runTask(ctx context.Context, _ *mcp.CallToolRequest, args runTaskArgs) (*mcp.CallToolResult, any, error) {
	req, err := args.request()
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.runner.Run(ctx, req)
	if err != nil {
		s.logger.Warn("run_task failed", "profile_id", req.ProfileID, "error", err)
		return nil, nil, err
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
