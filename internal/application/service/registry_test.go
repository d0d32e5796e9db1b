package service

import (
	"context"
	"testing"

	"browser-use-gologin/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name entity.ToolName
	desc string
}

func (s *stubTool) Name() entity.ToolName { return s.name }
func (s *stubTool) Description() string   { return s.desc }
func (s *stubTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (s *stubTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	return entity.ActionResult{Success: true}, nil
}

func TestToolRegistry_KeepsRegistrationOrder(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubTool{name: entity.ToolGoToURL})
	r.Register(&stubTool{name: entity.ToolClickElement})
	r.Register(&stubTool{name: entity.ToolDone})

	defs := r.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "go_to_url", defs[0].Name)
	assert.Equal(t, "click_element", defs[1].Name)
	assert.Equal(t, "done", defs[2].Name)
}

func TestToolRegistry_ReplaceKeepsPosition(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubTool{name: entity.ToolGoToURL, desc: "old"})
	r.Register(&stubTool{name: entity.ToolDone})
	r.Register(&stubTool{name: entity.ToolGoToURL, desc: "new"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].Description())

	tool, ok := r.Get(entity.ToolGoToURL)
	require.True(t, ok)
	assert.Equal(t, "new", tool.Description())

	_, ok = r.Get(entity.ToolWait)
	assert.False(t, ok)
}
