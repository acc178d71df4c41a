package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCall(t *testing.T) {
	t.Run("ValidToolCall", func(t *testing.T) {
		response := `<tool>
<tool_name>execute_command</tool_name>
<arguments>
  <command>go test ./...</command>
</arguments>
</tool>`

		toolCall, err := ParseToolCall(response)
		require.NoError(t, err)
		require.NotNil(t, toolCall)
		assert.Equal(t, "execute_command", toolCall.ToolName)
		assert.Contains(t, string(toolCall.GetArgumentsXML()), "<command>go test ./...</command>")
	})

	t.Run("NoToolCall", func(t *testing.T) {
		toolCall, err := ParseToolCall("just some prose without a tool")
		require.NoError(t, err)
		assert.Nil(t, toolCall)
	})

	t.Run("MissingToolName", func(t *testing.T) {
		_, err := ParseToolCall("<tool><arguments><x>1</x></arguments></tool>")
		assert.Error(t, err)
	})

	t.Run("UnescapedAmpersandFallback", func(t *testing.T) {
		response := `<tool>
<tool_name>execute_command</tool_name>
<arguments>
  <command>make build && make test</command>
</arguments>
</tool>`

		toolCall, err := ParseToolCall(response)
		require.NoError(t, err)
		require.NotNil(t, toolCall)
		assert.Equal(t, "execute_command", toolCall.ToolName)
	})
}

func TestHasToolCall(t *testing.T) {
	assert.True(t, HasToolCall("text <tool><tool_name>x</tool_name></tool> more"))
	assert.False(t, HasToolCall("no tools here"))
}

func TestEscapeUnescapedAmpersands(t *testing.T) {
	t.Run("EscapesBareAmpersands", func(t *testing.T) {
		result := escapeUnescapedAmpersands([]byte("a && b"))
		assert.Equal(t, "a &amp;&amp; b", string(result))
	})

	t.Run("LeavesExistingEntitiesAlone", func(t *testing.T) {
		result := escapeUnescapedAmpersands([]byte("a &amp; b &lt; c &#38; d"))
		assert.Equal(t, "a &amp; b &lt; c &#38; d", string(result))
	})

	t.Run("MixedContent", func(t *testing.T) {
		result := escapeUnescapedAmpersands([]byte("x & y &amp; z"))
		assert.Equal(t, "x &amp; y &amp; z", string(result))
	})
}

func TestXMLToMap(t *testing.T) {
	t.Run("FlatArguments", func(t *testing.T) {
		result, err := XMLToMap([]byte("<arguments><status>verified</status><summary>done</summary></arguments>"))
		require.NoError(t, err)
		assert.Equal(t, "verified", result["status"])
		assert.Equal(t, "done", result["summary"])
	})

	t.Run("EmptyArguments", func(t *testing.T) {
		result, err := XMLToMap([]byte("<arguments></arguments>"))
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		result, err := XMLToMap([]byte("<arguments>\n  <command>\n    ls -la\n  </command>\n</arguments>"))
		require.NoError(t, err)
		assert.Equal(t, "ls -la", result["command"])
	})
}
