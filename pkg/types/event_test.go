package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventConstructors(t *testing.T) {
	t.Run("ToolCall", func(t *testing.T) {
		event := NewToolCallEvent("execute_command", map[string]interface{}{"command": "ls"})
		assert.Equal(t, EventTypeToolCall, event.Type)
		assert.Equal(t, "execute_command", event.ToolName)
		assert.Equal(t, "ls", event.ToolInput["command"])
		assert.True(t, event.IsToolEvent())
	})

	t.Run("Error", func(t *testing.T) {
		event := NewErrorEvent(errors.New("boom"))
		assert.True(t, event.IsErrorEvent())
		assert.EqualError(t, event.Error, "boom")
	})

	t.Run("TokenUsage", func(t *testing.T) {
		event := NewTokenUsageEvent(100, 20, 120)
		assert.Equal(t, 100, event.TokenUsage.PromptTokens)
		assert.Equal(t, 20, event.TokenUsage.CompletionTokens)
		assert.Equal(t, 120, event.TokenUsage.TotalTokens)
	})
}

func TestEventPredicates(t *testing.T) {
	assert.True(t, NewThinkingContentEvent("x").IsThinkingEvent())
	assert.True(t, NewThinkingContentEvent("x").IsContentEvent())
	assert.True(t, NewMessageContentEvent("x").IsMessageEvent())
	assert.True(t, NewMessageContentEvent("x").IsContentEvent())
	assert.False(t, NewTurnEndEvent().IsContentEvent())
	assert.True(t, NewNoToolCallEvent().IsToolEvent())
}

func TestWithMetadata(t *testing.T) {
	event := NewToolResultEvent("x", "out").WithMetadata("exit_code", 0)
	assert.Equal(t, 0, event.Metadata["exit_code"])
}

func TestExecutionEvents(t *testing.T) {
	phase := NewPhaseEvent("f-1", "planning", "starting")
	assert.True(t, phase.IsPhase())
	assert.Equal(t, "f-1", phase.FeatureID)

	progress := NewProgressEvent("f-1", "text")
	assert.True(t, progress.IsProgress())

	tool := NewToolEvent("f-1", "execute_command", nil)
	assert.True(t, tool.IsTool())
	assert.Equal(t, "execute_command", tool.Tool)
}
