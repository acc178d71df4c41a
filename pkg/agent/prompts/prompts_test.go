package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neutrobox/automaker/pkg/agent/tools"
	"github.com/neutrobox/automaker/pkg/types"
)

func TestPromptBuilder(t *testing.T) {
	t.Run("IncludesAllSections", func(t *testing.T) {
		prompt := NewPromptBuilder(CodingTaskPrompt).
			WithTools([]tools.Tool{tools.NewTaskCompletionTool()}).
			Build()

		assert.Contains(t, prompt, "<task>")
		assert.Contains(t, prompt, "<agent_loop>")
		assert.Contains(t, prompt, "<chain_of_thought>")
		assert.Contains(t, prompt, "<tool_calling>")
		assert.Contains(t, prompt, "<available_tools>")
		assert.Contains(t, prompt, "task_completion")
	})

	t.Run("NoToolsSectionWhenEmpty", func(t *testing.T) {
		prompt := NewPromptBuilder(CommitTaskPrompt).Build()
		assert.NotContains(t, prompt, "<available_tools>")
	})
}

func TestFormatToolSchemas(t *testing.T) {
	formatted := FormatToolSchemas([]tools.Tool{tools.NewTaskCompletionTool()})

	assert.Contains(t, formatted, "AVAILABLE TOOLS")
	assert.Contains(t, formatted, "task_completion")
	assert.Contains(t, formatted, "summary")
}

func TestBuildMessages(t *testing.T) {
	t.Run("SystemPromptFirst", func(t *testing.T) {
		messages := BuildMessages("be helpful", nil, "do the task")
		require.Len(t, messages, 2)
		assert.Equal(t, types.RoleSystem, messages[0].Role)
		assert.Equal(t, types.RoleUser, messages[1].Role)
	})

	t.Run("SkipsSystemMessagesInHistory", func(t *testing.T) {
		history := []*types.Message{
			types.NewSystemMessage("stale system"),
			types.NewUserMessage("question"),
			types.NewAssistantMessage("answer"),
		}
		messages := BuildMessages("fresh system", history, "")
		require.Len(t, messages, 3)
		assert.Equal(t, "fresh system", messages[0].Content)
		for _, msg := range messages[1:] {
			assert.NotEqual(t, types.RoleSystem, msg.Role)
		}
	})
}

func TestStaticPrompts(t *testing.T) {
	// Commit instructions must derive messages from the diff, never from
	// the feature description.
	assert.True(t, strings.Contains(CommitTaskPrompt, "diff"))
	assert.Contains(t, CodingTaskPrompt, "update_feature_status")
	assert.Contains(t, VerificationTaskPrompt, "resuming")
}
