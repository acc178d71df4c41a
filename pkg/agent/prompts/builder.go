// Package prompts assembles system prompts for agent sessions.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neutrobox/automaker/pkg/agent/tools"
	"github.com/neutrobox/automaker/pkg/types"
)

// PromptBuilder constructs system prompts for the agent loop.
type PromptBuilder struct {
	taskPrompt string
	tools      []tools.Tool
}

// NewPromptBuilder creates a new prompt builder with the given task framing.
func NewPromptBuilder(taskPrompt string) *PromptBuilder {
	return &PromptBuilder{taskPrompt: taskPrompt}
}

// WithTools sets the available tools for the agent.
func (pb *PromptBuilder) WithTools(toolsList []tools.Tool) *PromptBuilder {
	pb.tools = toolsList
	return pb
}

// Build constructs the complete system prompt by assembling all sections.
func (pb *PromptBuilder) Build() string {
	var builder strings.Builder

	builder.WriteString(pb.taskPrompt)
	builder.WriteString("\n\n")

	builder.WriteString(AgentLoopPrompt)
	builder.WriteString("\n\n")

	builder.WriteString(ChainOfThoughtPrompt)
	builder.WriteString("\n\n")

	builder.WriteString(ToolCallingPrompt)
	builder.WriteString("\n\n")

	if len(pb.tools) > 0 {
		builder.WriteString("<available_tools>\n")
		builder.WriteString(FormatToolSchemas(pb.tools))
		builder.WriteString("</available_tools>\n")
	}

	return builder.String()
}

// FormatToolSchemas renders tool names, descriptions, and parameter schemas
// for inclusion in the system prompt.
func FormatToolSchemas(toolsList []tools.Tool) string {
	var builder strings.Builder
	builder.WriteString("AVAILABLE TOOLS:\n\n")

	for _, tool := range toolsList {
		builder.WriteString(fmt.Sprintf("## %s\n", tool.Name()))
		builder.WriteString(tool.Description())
		builder.WriteString("\n")

		if schema := tool.Schema(); schema != nil {
			schemaJSON, err := json.MarshalIndent(schema, "", "  ")
			if err == nil {
				builder.WriteString("Parameters schema:\n")
				builder.Write(schemaJSON)
				builder.WriteString("\n")
			}
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// BuildMessages creates a complete message list including system prompt and
// conversation history. Existing system messages in history are skipped to
// avoid duplicates.
func BuildMessages(systemPrompt string, history []*types.Message, userMessage string) []*types.Message {
	messages := make([]*types.Message, 0, len(history)+2)

	messages = append(messages, types.NewSystemMessage(systemPrompt))

	for _, msg := range history {
		if msg.Role != types.RoleSystem {
			messages = append(messages, msg)
		}
	}

	if userMessage != "" {
		messages = append(messages, types.NewUserMessage(userMessage))
	}

	return messages
}
