package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("FullConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "automaker.yaml")
		content := `
project_dir: /srv/project
model: gpt-4o
base_url: http://localhost:11434/v1
max_turns: 30
commit_turns: 5
timeout: 20m
allowed_commands:
  - "go *"
  - "git *"
denied_commands:
  - "git push*"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/project", cfg.ProjectDir)
		assert.Equal(t, "gpt-4o", cfg.Model)
		assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
		assert.Equal(t, 30, cfg.MaxTurns)
		assert.Equal(t, 5, cfg.CommitTurns)
		assert.Equal(t, Duration(20*time.Minute), cfg.Timeout)
		assert.Equal(t, []string{"go *", "git *"}, cfg.AllowedCommands)
		assert.Equal(t, []string{"git push*"}, cfg.DeniedCommands)
	})

	t.Run("DefaultsFillUnsetFields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "automaker.yaml")
		require.NoError(t, os.WriteFile(path, []byte("model: gpt-4o\n"), 0600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ".", cfg.ProjectDir)
		assert.Equal(t, DefaultMaxTurns, cfg.MaxTurns)
		assert.Equal(t, DefaultCommitTurns, cfg.CommitTurns)
		assert.Zero(t, cfg.Timeout)
	})

	t.Run("MissingFileErrors", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("InvalidYAMLErrors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0600))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
