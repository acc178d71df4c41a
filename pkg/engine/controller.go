// Package engine drives feature attempts: it selects work from the feature
// store, runs agent sessions against it, verifies outcomes against the
// store, and reports progress on an ordered event channel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neutrobox/automaker/pkg/agent"
	"github.com/neutrobox/automaker/pkg/agent/prompts"
	"github.com/neutrobox/automaker/pkg/agent/tools"
	"github.com/neutrobox/automaker/pkg/bridge"
	"github.com/neutrobox/automaker/pkg/contextlog"
	"github.com/neutrobox/automaker/pkg/feature"
	"github.com/neutrobox/automaker/pkg/logging"
	"github.com/neutrobox/automaker/pkg/types"
)

// maxResultMessage caps the attempt result message length.
const maxResultMessage = 500

// progressBufferSize is the capacity of the controller's outward event
// channel. Consumers are expected to drain continuously.
const progressBufferSize = 256

// AttemptKind identifies what an attempt is trying to do.
type AttemptKind string

const (
	KindImplement AttemptKind = "implement"
	KindResume    AttemptKind = "resume"
	KindCommit    AttemptKind = "commit"
)

// Result is the outcome of one attempt.
type Result struct {
	// Message describes the outcome; at most maxResultMessage characters.
	Message string

	// Passed reports whether the attempt satisfied its verification policy.
	Passed bool
}

// Session is the slice of an agent session the controller depends on.
// Tests substitute fakes; production uses agent.Session.
type Session interface {
	Run(ctx context.Context, prompt string) error
	Events() <-chan *types.AgentEvent
}

// Opener constructs sessions. It exists so the controller never touches
// provider wiring directly.
type Opener interface {
	Open(config agent.Config) (Session, error)
}

// Controller owns the feature store, the per-feature transcripts, and the
// outward progress channel, and runs attempts to completion.
type Controller struct {
	store  *feature.Store
	ctxLog *contextlog.Log
	opener Opener
	config *Config
	log    *logging.Logger
	events chan *types.ExecutionEvent
}

// NewController creates a controller over the given store and opener.
func NewController(store *feature.Store, ctxLog *contextlog.Log, opener Opener, config *Config) *Controller {
	if config == nil {
		config = DefaultConfig()
	}
	config.applyDefaults()

	logger, err := logging.NewLogger("engine")
	if err != nil {
		logger.Warnf("engine logger fell back to stderr: %v", err)
	}

	return &Controller{
		store:  store,
		ctxLog: ctxLog,
		opener: opener,
		config: config,
		log:    logger,
		events: make(chan *types.ExecutionEvent, progressBufferSize),
	}
}

// Events returns the ordered progress event channel. The channel stays open
// for the controller's lifetime; call Close when no more attempts will run.
func (c *Controller) Events() <-chan *types.ExecutionEvent {
	return c.events
}

// Close closes the progress event channel.
func (c *Controller) Close() {
	close(c.events)
}

// Store returns the controller's feature store.
func (c *Controller) Store() *feature.Store {
	return c.store
}

// ContextLog returns the controller's per-feature transcript log.
func (c *Controller) ContextLog() *contextlog.Log {
	return c.ctxLog
}

// RunImplement executes a fresh implementation attempt for the feature. The
// feature is moved to in_progress, a planning marker opens its transcript,
// and a coding session runs until completion, cancellation, or fault. The
// attempt passes when the feature's post-session status satisfies the
// verification policy.
func (c *Controller) RunImplement(ctx context.Context, exec *Execution, f *feature.Feature) (*Result, error) {
	if err := c.store.UpdateStatus(f.ID, feature.StatusInProgress, ""); err != nil {
		c.log.Warnf("failed to mark feature %s in progress: %v", f.ID, err)
	}

	c.markPhase(f.ID, "planning", "analyzing feature and preparing implementation plan")

	sessionTools := c.sessionTools(f)
	config := agent.Config{
		SystemPrompt: prompts.NewPromptBuilder(prompts.CodingTaskPrompt).WithTools(sessionTools).Build(),
		Tools:        sessionTools,
		WorkDir:      c.config.ProjectDir,
		Model:        c.modelFor(f),
		MaxTurns:     c.config.MaxTurns,
	}

	content, summary, err := c.runSession(ctx, exec, f, KindImplement, config, formatFeaturePrompt(f))
	if err != nil {
		return c.finishAttempt(f, KindImplement, err)
	}
	return c.verify(f, content, summary)
}

// RunResume executes a resume attempt: the session gets the feature plus
// the transcript of prior progress and is asked to verify and finish the
// work rather than start over.
func (c *Controller) RunResume(ctx context.Context, exec *Execution, f *feature.Feature, priorContext string) (*Result, error) {
	c.markPhase(f.ID, "resuming", "resuming from previous session progress")

	sessionTools := c.sessionTools(f)
	config := agent.Config{
		SystemPrompt: prompts.NewPromptBuilder(prompts.VerificationTaskPrompt).WithTools(sessionTools).Build(),
		Tools:        sessionTools,
		WorkDir:      c.config.ProjectDir,
		Model:        c.modelFor(f),
		MaxTurns:     c.config.MaxTurns,
	}

	prompt := formatFeaturePrompt(f)
	if priorContext != "" {
		prompt += "\n\nPrevious session progress:\n" + priorContext
	}

	content, summary, err := c.runSession(ctx, exec, f, KindResume, config, prompt)
	if err != nil {
		return c.finishAttempt(f, KindResume, err)
	}
	return c.verify(f, content, summary)
}

// RunCommit executes a commit-only attempt with a small turn budget and a
// tool surface restricted to shell access and status reporting. It passes
// on any normal completion; only cancellation fails it.
func (c *Controller) RunCommit(ctx context.Context, exec *Execution, f *feature.Feature) (*Result, error) {
	c.markPhase(f.ID, "committing", "preparing git commit for completed work")

	sessionTools := c.sessionTools(f)
	config := agent.Config{
		SystemPrompt: prompts.NewPromptBuilder(prompts.CommitTaskPrompt).WithTools(sessionTools).Build(),
		Tools:        sessionTools,
		WorkDir:      c.config.ProjectDir,
		Model:        c.modelFor(f),
		MaxTurns:     c.config.CommitTurns,
	}

	prompt := fmt.Sprintf("Commit the work completed for this feature:\n%s", formatFeaturePrompt(f))

	content, summary, err := c.runSession(ctx, exec, f, KindCommit, config, prompt)
	if err != nil {
		return c.finishAttempt(f, KindCommit, err)
	}

	message := content
	if message == "" {
		message = summary
	}
	if message == "" {
		message = "commit attempt completed"
	}
	c.emit(types.NewProgressEvent(f.ID, "commit attempt passed"))
	return &Result{Passed: true, Message: truncateMessage(message)}, nil
}

// runSession opens a session per the config, binds it to the execution
// handle, streams its events into the transcript and progress channel, and
// waits for it to finish. The handle is cleared on every exit path. It
// returns the accumulated response text and the task completion summary,
// when one was produced.
func (c *Controller) runSession(parent context.Context, exec *Execution, f *feature.Feature, kind AttemptKind, config agent.Config, prompt string) (string, string, error) {
	session, err := c.opener.Open(config)
	if err != nil {
		return "", "", fmt.Errorf("failed to open %s session: %w", kind, err)
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if c.config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(parent, c.config.Timeout.Std())
	} else {
		runCtx, cancel = context.WithCancel(parent)
	}
	defer cancel()

	exec.bind(session, cancel)
	defer exec.clear()

	runErr := make(chan error, 1)
	go func() {
		runErr <- session.Run(runCtx, prompt)
	}()

	var content strings.Builder
	var summary string
	implementationStarted := false

	for event := range session.Events() {
		// After cancellation the stream is drained but no longer forwarded.
		if runCtx.Err() != nil {
			continue
		}

		switch {
		case event.IsContentEvent():
			content.WriteString(event.Content)
			if appendErr := c.ctxLog.Append(f.ID, event.Content); appendErr != nil {
				c.log.Warnf("context log append failed for %s: %v", f.ID, appendErr)
			}
			c.emit(types.NewProgressEvent(f.ID, event.Content))

		case event.Type == types.EventTypeToolCall:
			if kind == KindImplement && !implementationStarted {
				implementationStarted = true
				c.markPhase(f.ID, "implementing", "implementation started")
			}
			if appendErr := c.ctxLog.AppendToolUse(f.ID, event.ToolName); appendErr != nil {
				c.log.Warnf("context log append failed for %s: %v", f.ID, appendErr)
			}
			c.emit(types.NewToolEvent(f.ID, event.ToolName, event.ToolInput))

		case event.Type == types.EventTypeToolResult:
			if event.ToolName == "task_completion" {
				if text, ok := event.ToolOutput.(string); ok {
					summary = text
				}
			}

		case event.Type == types.EventTypeTokenUsage:
			if event.TokenUsage != nil {
				c.log.Debugf("feature %s token usage: prompt=%d completion=%d", f.ID, event.TokenUsage.PromptTokens, event.TokenUsage.CompletionTokens)
			}

		case event.IsErrorEvent():
			c.log.Errorf("feature %s session error: %v", f.ID, event.Error)
		}
	}

	return content.String(), summary, <-runErr
}

// finishAttempt maps a session error to the attempt outcome: cancellation
// becomes a failed-but-clean result, anything else is raised to the caller.
func (c *Controller) finishAttempt(f *feature.Feature, kind AttemptKind, err error) (*Result, error) {
	if errors.Is(err, context.Canceled) {
		c.log.Infof("%s attempt for feature %s cancelled", kind, f.ID)
		return &Result{Passed: false, Message: fmt.Sprintf("%s aborted", kind)}, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s attempt for feature %s timed out: %w", kind, f.ID, err)
	}
	return nil, fmt.Errorf("%s attempt for feature %s failed: %w", kind, f.ID, err)
}

// verify reloads the store and evaluates the verification policy against
// the feature's post-session status. The result message is the session's
// accumulated response text; the feature summary and the task completion
// summary are fallbacks for sessions that streamed nothing.
func (c *Controller) verify(f *feature.Feature, content, summary string) (*Result, error) {
	c.markPhase(f.ID, "verifying", "checking feature status against verification policy")

	updated := c.store.Find(f.ID)
	if updated == nil {
		// The agent may have rewritten the list without this feature.
		c.emit(types.NewProgressEvent(f.ID, fmt.Sprintf("verification failed: feature %s not found after session", f.ID)))
		return &Result{Passed: false, Message: fmt.Sprintf("feature %s not found after session", f.ID)}, nil
	}

	message := content
	if message == "" {
		message = updated.Summary
	}
	if message == "" {
		message = summary
	}
	if message == "" {
		message = fmt.Sprintf("session finished with status %s", updated.Status)
	}

	passed := updated.Passed()
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	c.emit(types.NewProgressEvent(f.ID, fmt.Sprintf("verification %s with status %s", outcome, updated.Status)))

	return &Result{Passed: passed, Message: truncateMessage(message)}, nil
}

// sessionTools is the tool surface for attempts: shell access scoped to the
// project, the status bridge bound to the feature, and the loop breaker.
func (c *Controller) sessionTools(f *feature.Feature) []tools.Tool {
	return []tools.Tool{
		c.shellTool(),
		bridge.NewUpdateFeatureStatusTool(c.store, f.ID),
		tools.NewTaskCompletionTool(),
	}
}

func (c *Controller) shellTool() tools.Tool {
	matcher, err := tools.NewCommandMatcher(c.config.AllowedCommands, c.config.DeniedCommands)
	if err != nil {
		c.log.Warnf("invalid command patterns, allowing all commands: %v", err)
		matcher = nil
	}
	return tools.NewExecuteCommandTool(c.config.ProjectDir, matcher)
}

// modelFor resolves the model for a feature: per-feature override first,
// then the engine config.
func (c *Controller) modelFor(f *feature.Feature) string {
	if f.Model != "" {
		return f.Model
	}
	return c.config.Model
}

// markPhase writes a transcript phase marker and emits the matching phase
// event. Transcript failures are diagnostics only.
func (c *Controller) markPhase(featureID, phase, message string) {
	if err := c.ctxLog.AppendPhase(featureID, strings.ToUpper(phase)); err != nil {
		c.log.Warnf("context log phase marker failed for %s: %v", featureID, err)
	}
	c.emit(types.NewPhaseEvent(featureID, phase, message))
}

func (c *Controller) emit(event *types.ExecutionEvent) {
	c.events <- event
}

// formatFeaturePrompt renders a feature as the session's task description.
func formatFeaturePrompt(f *feature.Feature) string {
	var builder strings.Builder
	builder.WriteString("Feature to implement:\n")
	builder.WriteString(fmt.Sprintf("ID: %s\n", f.ID))
	if f.Category != "" {
		builder.WriteString(fmt.Sprintf("Category: %s\n", f.Category))
	}
	builder.WriteString(fmt.Sprintf("Description: %s\n", f.Description))
	if len(f.Steps) > 0 {
		builder.WriteString("Steps:\n")
		for i, step := range f.Steps {
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
	}
	if f.SkipTests {
		builder.WriteString("\nAutomated testing is skipped for this feature. When the work is complete, set its status to waiting_approval instead of verified.\n")
	}
	return builder.String()
}

// truncateMessage caps a result message at maxResultMessage characters,
// cutting on a rune boundary so multi-byte text stays valid UTF-8.
func truncateMessage(message string) string {
	if len(message) <= maxResultMessage {
		return message
	}
	runes := []rune(message)
	if len(runes) <= maxResultMessage {
		return message
	}
	return string(runes[:maxResultMessage])
}
