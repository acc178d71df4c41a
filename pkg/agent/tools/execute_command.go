package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// defaultCommandTimeout bounds a single shell invocation so a hung build or
// watcher cannot stall the whole run.
const defaultCommandTimeout = 10 * time.Minute

// maxCommandOutput caps captured output returned to the model.
const maxCommandOutput = 30000

// ExecuteCommandArgs represents the arguments for the execute command tool.
type ExecuteCommandArgs struct {
	Command string `xml:"command"`
}

// CommandMatcher applies glob allow/deny rules to shell commands. Denied
// patterns take precedence; an empty allow list permits everything not
// denied.
type CommandMatcher struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewCommandMatcher compiles the given allow and deny patterns.
func NewCommandMatcher(allowed, denied []string) (*CommandMatcher, error) {
	cm := &CommandMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		cm.allowed = append(cm.allowed, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		cm.denied = append(cm.denied, g)
	}

	return cm, nil
}

// IsAllowed returns true if the command passes the pattern rules.
func (cm *CommandMatcher) IsAllowed(command string) bool {
	command = strings.TrimSpace(command)

	for _, pattern := range cm.denied {
		if pattern.Match(command) {
			return false
		}
	}

	if len(cm.allowed) == 0 {
		return true
	}

	for _, pattern := range cm.allowed {
		if pattern.Match(command) {
			return true
		}
	}

	return false
}

// ExecuteCommandTool runs shell commands inside the working directory.
type ExecuteCommandTool struct {
	workDir string
	matcher *CommandMatcher
	timeout time.Duration
}

// ExecuteCommandOption configures an ExecuteCommandTool.
type ExecuteCommandOption func(*ExecuteCommandTool)

// WithCommandTimeout overrides the default per-command timeout.
func WithCommandTimeout(d time.Duration) ExecuteCommandOption {
	return func(t *ExecuteCommandTool) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewExecuteCommandTool creates a shell tool scoped to workDir with the
// given command matcher. A nil matcher allows all commands.
func NewExecuteCommandTool(workDir string, matcher *CommandMatcher, opts ...ExecuteCommandOption) *ExecuteCommandTool {
	t := &ExecuteCommandTool{
		workDir: workDir,
		matcher: matcher,
		timeout: defaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ExecuteCommandTool) Name() string {
	return "execute_command"
}

func (t *ExecuteCommandTool) Description() string {
	return "Execute a shell command in the project directory. Use this to read files, run builds and tests, and make changes with standard tools. Output is truncated if very long."
}

func (t *ExecuteCommandTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{
		"command": map[string]interface{}{
			"type":        "string",
			"description": "The shell command to execute",
		},
	}, []string{"command"})
}

func (t *ExecuteCommandTool) Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error) {
	var args ExecuteCommandArgs
	if err := UnmarshalXMLWithFallback(argumentsXML, &args); err != nil {
		return "", nil, fmt.Errorf("failed to parse execute command arguments: %w", err)
	}

	command := strings.TrimSpace(args.Command)
	if command == "" {
		return "", nil, fmt.Errorf("command is required")
	}

	if t.matcher != nil && !t.matcher.IsAllowed(command) {
		return "", nil, fmt.Errorf("command not permitted by policy: %s", command)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
	cmd.Dir = t.workDir

	output, err := cmd.CombinedOutput()
	result := string(output)
	if len(result) > maxCommandOutput {
		result = result[:maxCommandOutput] + "\n... (output truncated)"
	}

	metadata := map[string]interface{}{
		"command": command,
	}

	if cmdCtx.Err() == context.DeadlineExceeded {
		return "", metadata, fmt.Errorf("command timed out after %v", t.timeout)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			metadata["exit_code"] = exitErr.ExitCode()
			// Non-zero exit is a result for the model, not a tool failure.
			return fmt.Sprintf("Command exited with code %d.\nOutput:\n%s", exitErr.ExitCode(), result), metadata, nil
		}
		return "", metadata, fmt.Errorf("failed to execute command: %w", err)
	}

	metadata["exit_code"] = 0
	if result == "" {
		return "Command completed with no output.", metadata, nil
	}
	return result, metadata, nil
}

func (t *ExecuteCommandTool) IsLoopBreaking() bool {
	return false
}
