package types

// ExecutionEventType defines the type of progress event reported by the
// execution engine while it drives a feature attempt.
type ExecutionEventType string

const (
	ExecutionEventPhase    ExecutionEventType = "phase"    // ExecutionEventPhase marks a lifecycle transition (planning, acting, verifying, ...).
	ExecutionEventProgress ExecutionEventType = "progress" // ExecutionEventProgress carries streamed text from the agent session.
	ExecutionEventTool     ExecutionEventType = "tool"     // ExecutionEventTool reports a tool invocation made by the agent session.
)

// ExecutionEvent is an outward progress event for one feature attempt.
// Events are emitted in strict chronological order; subscribers are passive
// and never reply synchronously.
type ExecutionEvent struct {
	// ToolInput is the tool's input (for tool events).
	ToolInput map[string]interface{}

	// FeatureID identifies the feature the attempt is running against.
	FeatureID string

	// Phase names the lifecycle phase (for phase events).
	Phase string

	// Message is a human-readable phase description (for phase events).
	Message string

	// Content is streamed agent text (for progress events).
	Content string

	// Tool is the invoked tool's name (for tool events).
	Tool string

	// Type indicates the kind of event.
	Type ExecutionEventType
}

// NewPhaseEvent creates a phase transition event.
func NewPhaseEvent(featureID, phase, message string) *ExecutionEvent {
	return &ExecutionEvent{
		Type:      ExecutionEventPhase,
		FeatureID: featureID,
		Phase:     phase,
		Message:   message,
	}
}

// NewProgressEvent creates a streamed-text progress event.
func NewProgressEvent(featureID, content string) *ExecutionEvent {
	return &ExecutionEvent{
		Type:      ExecutionEventProgress,
		FeatureID: featureID,
		Content:   content,
	}
}

// NewToolEvent creates a tool invocation event.
func NewToolEvent(featureID, tool string, input map[string]interface{}) *ExecutionEvent {
	return &ExecutionEvent{
		Type:      ExecutionEventTool,
		FeatureID: featureID,
		Tool:      tool,
		ToolInput: input,
	}
}

// IsPhase returns true if this is a phase transition event.
func (e *ExecutionEvent) IsPhase() bool {
	return e.Type == ExecutionEventPhase
}

// IsProgress returns true if this is a streamed-text progress event.
func (e *ExecutionEvent) IsProgress() bool {
	return e.Type == ExecutionEventProgress
}

// IsTool returns true if this is a tool invocation event.
func (e *ExecutionEvent) IsTool() bool {
	return e.Type == ExecutionEventTool
}
