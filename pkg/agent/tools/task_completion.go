package tools

import (
	"context"
	"fmt"
)

// TaskCompletionArgs represents the arguments for the task completion tool.
type TaskCompletionArgs struct {
	Summary string `xml:"summary"`
}

// TaskCompletionTool signals that the agent has finished its task. It is
// loop-breaking: the session stops iterating once it executes.
type TaskCompletionTool struct{}

// NewTaskCompletionTool creates a new task completion tool.
func NewTaskCompletionTool() *TaskCompletionTool {
	return &TaskCompletionTool{}
}

func (t *TaskCompletionTool) Name() string {
	return "task_completion"
}

func (t *TaskCompletionTool) Description() string {
	return "Signal that the current task is complete. Call this when all work is done and verified. Provide a concise summary of what was accomplished."
}

func (t *TaskCompletionTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{
		"summary": map[string]interface{}{
			"type":        "string",
			"description": "A concise summary of the work that was completed",
		},
	}, []string{"summary"})
}

func (t *TaskCompletionTool) Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error) {
	var args TaskCompletionArgs
	if err := UnmarshalXMLWithFallback(argumentsXML, &args); err != nil {
		return "", nil, fmt.Errorf("failed to parse task completion arguments: %w", err)
	}

	if args.Summary == "" {
		return "Task completed.", nil, nil
	}
	return args.Summary, map[string]interface{}{"summary": args.Summary}, nil
}

// IsLoopBreaking returns true: completing the task ends the agent loop.
func (t *TaskCompletionTool) IsLoopBreaking() bool {
	return true
}
