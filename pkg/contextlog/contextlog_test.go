package contextlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	t.Run("CreatesDirectoryAndFile", func(t *testing.T) {
		dir := t.TempDir()
		log := New(dir)

		require.NoError(t, log.Append("f-1", "hello"))

		data, err := os.ReadFile(filepath.Join(dir, ".automaker", "context", "f-1.log"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("AppendsInOrder", func(t *testing.T) {
		log := New(t.TempDir())

		require.NoError(t, log.Append("f-1", "first "))
		require.NoError(t, log.Append("f-1", "second"))

		transcript, err := log.Read("f-1")
		require.NoError(t, err)
		assert.Equal(t, "first second", transcript)
	})

	t.Run("SeparateFilesPerFeature", func(t *testing.T) {
		log := New(t.TempDir())

		require.NoError(t, log.Append("f-1", "one"))
		require.NoError(t, log.Append("f-2", "two"))

		first, err := log.Read("f-1")
		require.NoError(t, err)
		second, err := log.Read("f-2")
		require.NoError(t, err)
		assert.Equal(t, "one", first)
		assert.Equal(t, "two", second)
	})

	t.Run("EmptyFeatureIDRejected", func(t *testing.T) {
		log := New(t.TempDir())
		assert.Error(t, log.Append("", "text"))
	})
}

func TestAppendPhase(t *testing.T) {
	log := New(t.TempDir())

	require.NoError(t, log.AppendPhase("f-1", "PLANNING"))

	transcript, err := log.Read("f-1")
	require.NoError(t, err)
	assert.Contains(t, transcript, "PLANNING")
	assert.Contains(t, transcript, "===")
}

func TestAppendToolUse(t *testing.T) {
	log := New(t.TempDir())

	require.NoError(t, log.AppendToolUse("f-1", "execute_command"))

	transcript, err := log.Read("f-1")
	require.NoError(t, err)
	assert.Contains(t, transcript, "[tool] execute_command")
}

func TestRead(t *testing.T) {
	t.Run("MissingTranscriptIsEmpty", func(t *testing.T) {
		log := New(t.TempDir())
		transcript, err := log.Read("f-never")
		require.NoError(t, err)
		assert.Empty(t, transcript)
	})
}
