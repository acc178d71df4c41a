package types

// AgentEventType defines the type of event emitted by an agent session.
type AgentEventType string

const (
	EventTypeThinkingStart   AgentEventType = "thinking_start"    // EventTypeThinkingStart indicates the agent is starting to think/reason.
	EventTypeThinkingContent AgentEventType = "thinking_content"  // EventTypeThinkingContent indicates content from the agent's thinking process.
	EventTypeThinkingEnd     AgentEventType = "thinking_end"      // EventTypeThinkingEnd indicates the agent has finished thinking.
	EventTypeMessageStart    AgentEventType = "message_start"     // EventTypeMessageStart indicates the agent is starting to compose a message.
	EventTypeMessageContent  AgentEventType = "message_content"   // EventTypeMessageContent indicates content from the agent's message.
	EventTypeMessageEnd      AgentEventType = "message_end"       // EventTypeMessageEnd indicates the agent has finished composing the message.
	EventTypeToolCall        AgentEventType = "tool_call"         // EventTypeToolCall indicates the agent is calling a tool.
	EventTypeToolResult      AgentEventType = "tool_result"       // EventTypeToolResult indicates a successful tool call result.
	EventTypeToolResultError AgentEventType = "tool_result_error" // EventTypeToolResultError indicates a tool call resulted in an error.
	EventTypeNoToolCall      AgentEventType = "no_tool_call"      // EventTypeNoToolCall indicates the agent decided not to call any tools.
	EventTypeTokenUsage      AgentEventType = "token_usage"       // EventTypeTokenUsage indicates token usage information from an LLM completion.
	EventTypeTurnEnd         AgentEventType = "turn_end"          // EventTypeTurnEnd indicates the session has finished the current turn.
	EventTypeError           AgentEventType = "error"             // EventTypeError indicates an error occurred during session processing.
)

// AgentEvent represents a single event emitted by an agent session during
// execution. Events are produced in strict order; consumers must not assume
// any batching beyond what the session itself performs.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// ToolInput is the input being sent to the tool (for tool call events).
	ToolInput map[string]interface{}

	// ToolOutput is the result from the tool (for tool result events).
	ToolOutput interface{}

	// Error contains error information for error events.
	Error error

	// Content holds text content for content-type events (thinking, message).
	Content string

	// ToolName is the name of the tool being called (for tool events).
	ToolName string

	// Type indicates the kind of event.
	Type AgentEventType

	// TokenUsage contains token usage information (for token usage events).
	TokenUsage *TokenUsage
}

// TokenUsage contains token usage statistics from an LLM API call.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the input/prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens in the generated completion.
	CompletionTokens int

	// TotalTokens is the total number of tokens used (prompt + completion).
	TotalTokens int
}

// NewThinkingStartEvent creates a thinking start event.
func NewThinkingStartEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeThinkingStart,
		Metadata: make(map[string]interface{}),
	}
}

// NewThinkingContentEvent creates a thinking content event.
func NewThinkingContentEvent(content string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeThinkingContent,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewThinkingEndEvent creates a thinking end event.
func NewThinkingEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeThinkingEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewMessageStartEvent creates a message start event.
func NewMessageStartEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessageStart,
		Metadata: make(map[string]interface{}),
	}
}

// NewMessageContentEvent creates a message content event.
func NewMessageContentEvent(content string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessageContent,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewMessageEndEvent creates a message end event.
func NewMessageEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessageEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewToolCallEvent creates a tool call event.
func NewToolCallEvent(toolName string, toolInput map[string]interface{}) *AgentEvent {
	return &AgentEvent{
		Type:      EventTypeToolCall,
		ToolName:  toolName,
		ToolInput: toolInput,
		Metadata:  make(map[string]interface{}),
	}
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(toolName string, output interface{}) *AgentEvent {
	return &AgentEvent{
		Type:       EventTypeToolResult,
		ToolName:   toolName,
		ToolOutput: output,
		Metadata:   make(map[string]interface{}),
	}
}

// NewToolResultErrorEvent creates a tool result error event.
func NewToolResultErrorEvent(toolName string, err error) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeToolResultError,
		ToolName: toolName,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// NewNoToolCallEvent creates a no tool call event.
func NewNoToolCallEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeNoToolCall,
		Metadata: make(map[string]interface{}),
	}
}

// NewTokenUsageEvent creates a token usage event.
func NewTokenUsageEvent(promptTokens, completionTokens, totalTokens int) *AgentEvent {
	return &AgentEvent{
		Type: EventTypeTokenUsage,
		TokenUsage: &TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      totalTokens,
		},
		Metadata: make(map[string]interface{}),
	}
}

// NewTurnEndEvent creates a turn end event.
func NewTurnEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeTurnEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeError,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the event and returns the event for chaining.
func (e *AgentEvent) WithMetadata(key string, value interface{}) *AgentEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsThinkingEvent returns true if this is any thinking-related event.
func (e *AgentEvent) IsThinkingEvent() bool {
	return e.Type == EventTypeThinkingStart ||
		e.Type == EventTypeThinkingContent ||
		e.Type == EventTypeThinkingEnd
}

// IsMessageEvent returns true if this is any message-related event.
func (e *AgentEvent) IsMessageEvent() bool {
	return e.Type == EventTypeMessageStart ||
		e.Type == EventTypeMessageContent ||
		e.Type == EventTypeMessageEnd
}

// IsToolEvent returns true if this is any tool-related event.
func (e *AgentEvent) IsToolEvent() bool {
	return e.Type == EventTypeToolCall ||
		e.Type == EventTypeToolResult ||
		e.Type == EventTypeToolResultError ||
		e.Type == EventTypeNoToolCall
}

// IsContentEvent returns true if this event contains text content.
func (e *AgentEvent) IsContentEvent() bool {
	return e.Type == EventTypeThinkingContent ||
		e.Type == EventTypeMessageContent
}

// IsErrorEvent returns true if this is an error event.
func (e *AgentEvent) IsErrorEvent() bool {
	return e.Type == EventTypeError
}
