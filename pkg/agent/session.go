// Package agent implements the autonomous agent session loop.
//
// A Session drives a streaming LLM through a bounded number of turns. Each
// turn streams a completion, separates thinking from message content, parses
// an XML tool call from the message, executes the tool, and feeds the result
// back into the conversation. The loop ends when a loop-breaking tool
// executes, the turn ceiling is reached, or the context is cancelled.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/neutrobox/automaker/pkg/agent/prompts"
	"github.com/neutrobox/automaker/pkg/agent/tools"
	"github.com/neutrobox/automaker/pkg/llm"
	"github.com/neutrobox/automaker/pkg/llm/tokenizer"
	"github.com/neutrobox/automaker/pkg/logging"
	"github.com/neutrobox/automaker/pkg/types"
)

// DefaultMaxTurns bounds a session when the config does not set a ceiling.
const DefaultMaxTurns = 50

// eventBufferSize is the capacity of the session event channel. Consumers
// are expected to drain continuously; the buffer only absorbs bursts.
const eventBufferSize = 100

// noToolCallNudge is fed back when a response contains no tool call.
const noToolCallNudge = "Your response did not contain a tool call. You must respond with exactly one tool call in the specified XML format. If the task is complete, call task_completion."

// Config describes how a session should run.
type Config struct {
	// SystemPrompt is the full system prompt for the session.
	SystemPrompt string

	// Tools are the tools available to the agent, in schema order.
	Tools []tools.Tool

	// WorkDir is the working directory the session operates in.
	WorkDir string

	// Model optionally overrides the provider's configured model.
	Model string

	// MaxTurns caps the number of turns; DefaultMaxTurns when zero.
	MaxTurns int
}

// Session is a single bounded agent run. It is not safe for concurrent use;
// Run may be called once.
type Session struct {
	provider llm.Provider
	config   Config
	log      *logging.Logger
	events   chan *types.AgentEvent
	history  []*types.Message
	toolMap  map[string]tools.Tool
	counter  *tokenizer.Tokenizer
}

// NewSession creates a session over the given provider. When config.Model
// is set and the provider supports cloning, the session uses a clone bound
// to that model.
func NewSession(provider llm.Provider, config Config, log *logging.Logger) (*Session, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = DefaultMaxTurns
	}
	if log == nil {
		log, _ = logging.NewLogger("agent")
	}

	if config.Model != "" && config.Model != provider.GetModel() {
		if cloner, ok := provider.(llm.ModelCloner); ok {
			provider = cloner.CloneWithModel(config.Model)
		}
	}

	toolMap := make(map[string]tools.Tool, len(config.Tools))
	for _, tool := range config.Tools {
		toolMap[tool.Name()] = tool
	}

	counter, err := tokenizer.New()
	if err != nil {
		// Token accounting is best-effort; the session still runs.
		log.Warnf("tokenizer unavailable, token usage events disabled: %v", err)
		counter = nil
	}

	return &Session{
		provider: provider,
		config:   config,
		log:      log,
		events:   make(chan *types.AgentEvent, eventBufferSize),
		toolMap:  toolMap,
		counter:  counter,
	}, nil
}

// Events returns the session's event channel. It is closed when Run returns.
func (s *Session) Events() <-chan *types.AgentEvent {
	return s.events
}

// Run executes the agent loop with the given initial prompt. It blocks until
// the loop completes, fails, or ctx is cancelled; the event channel is
// closed before Run returns. Cancellation is reported as ctx.Err().
func (s *Session) Run(ctx context.Context, prompt string) error {
	defer close(s.events)

	s.history = append(s.history, types.NewUserMessage(prompt))

	for turn := 1; turn <= s.config.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := s.runTurn(ctx, turn)
		if err != nil {
			s.emit(types.NewErrorEvent(err))
			return err
		}
		if done {
			s.emit(types.NewTurnEndEvent())
			return nil
		}
	}

	err := fmt.Errorf("reached maximum turns (%d) without completing the task", s.config.MaxTurns)
	s.emit(types.NewErrorEvent(err))
	return err
}

// runTurn executes one completion + tool cycle. It returns done=true when a
// loop-breaking tool executed.
func (s *Session) runTurn(ctx context.Context, turn int) (bool, error) {
	messages := prompts.BuildMessages(s.config.SystemPrompt, s.history, "")

	stream, err := s.provider.StreamCompletion(ctx, messages)
	if err != nil {
		return false, fmt.Errorf("turn %d: failed to start completion: %w", turn, err)
	}

	response, err := s.consumeStream(ctx, stream)
	if err != nil {
		return false, err
	}

	s.emitTokenUsage(messages, response)

	assistantText := response.thinking
	if assistantText != "" {
		assistantText = "<thinking>" + assistantText + "</thinking>\n"
	}
	assistantText += response.message
	s.history = append(s.history, types.NewAssistantMessage(assistantText))

	if !tools.HasToolCall(response.message) {
		s.emit(types.NewNoToolCallEvent())
		s.history = append(s.history, types.NewUserMessage(noToolCallNudge))
		return false, nil
	}

	toolCall, err := tools.ParseToolCall(response.message)
	if err != nil {
		s.log.Warnf("turn %d: malformed tool call: %v", turn, err)
		s.history = append(s.history, types.NewUserMessage(fmt.Sprintf("Your tool call could not be parsed: %v. Respond again with a valid tool call.", err)))
		return false, nil
	}

	return s.executeToolCall(ctx, toolCall)
}

// streamedResponse accumulates one turn's streamed output.
type streamedResponse struct {
	thinking string
	message  string
}

// consumeStream drains the completion stream, emitting ordered thinking and
// message events as content arrives.
func (s *Session) consumeStream(ctx context.Context, stream <-chan *llm.StreamChunk) (*streamedResponse, error) {
	response := &streamedResponse{}
	var inThinking, inMessage bool

	closeSections := func() {
		if inThinking {
			s.emit(types.NewThinkingEndEvent())
			inThinking = false
		}
		if inMessage {
			s.emit(types.NewMessageEndEvent())
			inMessage = false
		}
	}

	for chunk := range stream {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if chunk.IsError() {
			closeSections()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("stream error: %w", chunk.Error)
		}
		if chunk.Content == "" {
			continue
		}

		switch chunk.Type {
		case llm.ContentTypeThinking:
			if inMessage {
				s.emit(types.NewMessageEndEvent())
				inMessage = false
			}
			if !inThinking {
				s.emit(types.NewThinkingStartEvent())
				inThinking = true
			}
			s.emit(types.NewThinkingContentEvent(chunk.Content))
			response.thinking += chunk.Content
		default:
			if inThinking {
				s.emit(types.NewThinkingEndEvent())
				inThinking = false
			}
			if !inMessage {
				s.emit(types.NewMessageStartEvent())
				inMessage = true
			}
			s.emit(types.NewMessageContentEvent(chunk.Content))
			response.message += chunk.Content
		}
	}

	closeSections()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return response, nil
}

// executeToolCall dispatches a parsed tool call, emits the call and result
// events, and records the result in conversation history.
func (s *Session) executeToolCall(ctx context.Context, toolCall *tools.ToolCall) (bool, error) {
	argsXML := toolCall.GetArgumentsXML()

	toolInput, err := tools.XMLToMap(argsXML)
	if err != nil {
		toolInput = map[string]interface{}{}
	}
	s.emit(types.NewToolCallEvent(toolCall.ToolName, toolInput))

	tool, ok := s.toolMap[toolCall.ToolName]
	if !ok {
		err := fmt.Errorf("unknown tool: %s", toolCall.ToolName)
		s.emit(types.NewToolResultErrorEvent(toolCall.ToolName, err))
		s.history = append(s.history, types.NewUserMessage(fmt.Sprintf("Tool error: %v. Use only the tools listed in the system prompt.", err)))
		return false, nil
	}

	result, metadata, err := tool.Execute(ctx, argsXML)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		s.emit(types.NewToolResultErrorEvent(toolCall.ToolName, err))
		s.history = append(s.history, types.NewUserMessage(fmt.Sprintf("Tool '%s' failed: %v", toolCall.ToolName, err)))
		return false, nil
	}

	event := types.NewToolResultEvent(toolCall.ToolName, result)
	for k, v := range metadata {
		event.WithMetadata(k, v)
	}
	s.emit(event)

	if tool.IsLoopBreaking() {
		return true, nil
	}

	s.history = append(s.history, types.NewUserMessage(formatToolResult(toolCall.ToolName, result)))
	return false, nil
}

// emitTokenUsage reports approximate token usage for one completion.
func (s *Session) emitTokenUsage(messages []*types.Message, response *streamedResponse) {
	if s.counter == nil {
		return
	}
	promptTokens := s.counter.CountMessagesTokens(messages)
	completionTokens := s.counter.CountTokens(response.thinking) + s.counter.CountTokens(response.message)
	s.emit(types.NewTokenUsageEvent(promptTokens, completionTokens, promptTokens+completionTokens))
}

func (s *Session) emit(event *types.AgentEvent) {
	s.events <- event
}

func formatToolResult(toolName, result string) string {
	var builder strings.Builder
	builder.WriteString("Tool '")
	builder.WriteString(toolName)
	builder.WriteString("' result:\n")
	builder.WriteString(result)
	return builder.String()
}
