// Package contextlog maintains append-only per-feature transcripts. The
// transcript is a side channel: it records streamed agent output, phase
// markers, and tool invocations for audit and for reconstructing context
// when an attempt is resumed. Append failures must never abort an attempt;
// callers surface them as diagnostics only.
package contextlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const logDirName = "context"

// Log writes per-feature transcript files under
// <projectDir>/.automaker/context/<featureID>.log.
type Log struct {
	dir string
}

// New creates a context log rooted at the given project directory.
func New(projectDir string) *Log {
	return &Log{dir: filepath.Join(projectDir, ".automaker", logDirName)}
}

// Dir returns the directory holding the transcript files.
func (l *Log) Dir() string {
	return l.dir
}

// FilePath returns the transcript path for a feature.
func (l *Log) FilePath(featureID string) string {
	return filepath.Join(l.dir, featureID+".log")
}

// Append opens (or creates) the feature's transcript and appends text,
// syncing before return so the write survives the call. No durability is
// guaranteed across process crashes beyond what the filesystem provides.
func (l *Log) Append(featureID, text string) error {
	if featureID == "" {
		return fmt.Errorf("feature ID is required")
	}

	if err := os.MkdirAll(l.dir, 0750); err != nil {
		return fmt.Errorf("failed to create context log directory: %w", err)
	}

	file, err := os.OpenFile(l.FilePath(featureID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open context log: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("failed to append to context log: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync context log: %w", err)
	}

	return nil
}

// AppendPhase appends a timestamped phase marker line.
func (l *Log) AppendPhase(featureID, phase string) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	return l.Append(featureID, fmt.Sprintf("\n=== [%s] %s ===\n", timestamp, phase))
}

// AppendToolUse appends a marker line for a tool invocation.
func (l *Log) AppendToolUse(featureID, tool string) error {
	return l.Append(featureID, fmt.Sprintf("\n[tool] %s\n", tool))
}

// Read returns the full transcript for a feature, or an empty string when
// no transcript exists yet. Used only when building resume prompts.
func (l *Log) Read(featureID string) (string, error) {
	data, err := os.ReadFile(l.FilePath(featureID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read context log: %w", err)
	}
	return string(data), nil
}
