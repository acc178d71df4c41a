// Package feature defines the durable feature record, its status lifecycle,
// the JSON file store that persists it, and the next-feature selection policy.
package feature

// Status represents the lifecycle state of a feature.
type Status string

const (
	StatusBacklog         Status = "backlog"          // StatusBacklog means no work has started.
	StatusInProgress      Status = "in_progress"      // StatusInProgress means an attempt is (or was) running.
	StatusWaitingApproval Status = "waiting_approval" // StatusWaitingApproval means a human decision is pending.
	StatusVerified        Status = "verified"         // StatusVerified is terminal: the feature passed verification.
)

// ValidStatus reports whether s is one of the recognized lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusWaitingApproval, StatusVerified:
		return true
	}
	return false
}

// Feature is one queued unit of work. The JSON tags double as the
// allow-listed field projection: only tagged fields survive a store rewrite.
type Feature struct {
	ID            string   `json:"id"`
	Category      string   `json:"category,omitempty"`
	Description   string   `json:"description,omitempty"`
	Steps         []string `json:"steps,omitempty"`
	Status        Status   `json:"status"`
	SkipTests     bool     `json:"skipTests,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Model         string   `json:"model,omitempty"`
	ThinkingLevel string   `json:"thinkingLevel,omitempty"`
	Images        []string `json:"images,omitempty"`
	ImagePaths    []string `json:"imagePaths,omitempty"`
	StartedAt     string   `json:"startedAt,omitempty"`
}

// IsTerminal returns true when the feature needs no further engine work.
func (f *Feature) IsTerminal() bool {
	return f.Status == StatusVerified
}

// AwaitingApproval returns true when a human decision gates the feature.
func (f *Feature) AwaitingApproval() bool {
	return f.Status == StatusWaitingApproval
}

// Passed evaluates the verification policy for an attempt: a feature under
// test must reach verified, while a feature exempted from automated tests
// counts as passed once the approval gate is reached.
func (f *Feature) Passed() bool {
	if f.Status == StatusVerified {
		return true
	}
	return f.SkipTests && f.Status == StatusWaitingApproval
}
