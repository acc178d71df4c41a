package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default turn ceilings. Implementation attempts get a generous budget;
// commit attempts only need a handful of git invocations.
const (
	DefaultMaxTurns    = 50
	DefaultCommitTurns = 10
)

// Duration is a time.Duration that unmarshals from YAML as either a
// duration string ("20m") or integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, parseErr)
		}
		*d = Duration(parsed)
		return nil
	}

	var nanos int64
	if err := value.Decode(&nanos); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(nanos)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the run configuration for the execution engine.
type Config struct {
	// ProjectDir is the project the engine operates on. Holds the feature
	// list and the context transcript directory.
	ProjectDir string `yaml:"project_dir"`

	// Model is the default model for sessions. Individual features may
	// override it via their model field.
	Model string `yaml:"model"`

	// BaseURL points the provider at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url"`

	// AllowedCommands and DeniedCommands are glob patterns applied to shell
	// commands the agent runs. Empty allow list permits everything not denied.
	AllowedCommands []string `yaml:"allowed_commands"`
	DeniedCommands  []string `yaml:"denied_commands"`

	// MaxTurns caps implementation and resume sessions.
	MaxTurns int `yaml:"max_turns"`

	// CommitTurns caps commit sessions.
	CommitTurns int `yaml:"commit_turns"`

	// Timeout optionally bounds an attempt's wall-clock duration. Zero
	// disables the limit.
	Timeout Duration `yaml:"timeout"`
}

// DefaultConfig returns a config with default turn budgets and the current
// directory as project dir.
func DefaultConfig() *Config {
	return &Config{
		ProjectDir:  ".",
		MaxTurns:    DefaultMaxTurns,
		CommitTurns: DefaultCommitTurns,
	}
}

// LoadConfig reads a YAML config file and fills in defaults for unset
// fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.CommitTurns <= 0 {
		c.CommitTurns = DefaultCommitTurns
	}
}
