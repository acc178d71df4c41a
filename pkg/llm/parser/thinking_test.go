package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neutrobox/automaker/pkg/llm"
)

// feed runs a sequence of chunks through the parser and returns the
// accumulated thinking and message text.
func feed(p *ThinkingParser, chunks ...string) (thinking, message string) {
	collect := func(t, m *llm.StreamChunk) {
		if t != nil {
			thinking += t.Content
		}
		if m != nil {
			message += m.Content
		}
	}
	for _, chunk := range chunks {
		collect(p.Parse(chunk))
	}
	collect(p.Flush())
	return thinking, message
}

func TestThinkingParser(t *testing.T) {
	t.Run("SeparatesThinkingFromMessage", func(t *testing.T) {
		thinking, message := feed(NewThinkingParser(), "<thinking>planning</thinking>the answer")
		assert.Equal(t, "planning", thinking)
		assert.Equal(t, "the answer", message)
	})

	t.Run("TagSplitAcrossChunks", func(t *testing.T) {
		thinking, message := feed(NewThinkingParser(), "<think", "ing>deep", " thought</thi", "nking>done")
		assert.Equal(t, "deep thought", thinking)
		assert.Equal(t, "done", message)
	})

	t.Run("MessageOnly", func(t *testing.T) {
		thinking, message := feed(NewThinkingParser(), "hello ", "world")
		assert.Empty(t, thinking)
		assert.Equal(t, "hello world", message)
	})

	t.Run("OtherTagsPassThroughAsText", func(t *testing.T) {
		_, message := feed(NewThinkingParser(), "<tool><tool_name>x</tool_name></tool>")
		assert.Equal(t, "<tool><tool_name>x</tool_name></tool>", message)
	})

	t.Run("UnclosedTagFlushedAtEnd", func(t *testing.T) {
		_, message := feed(NewThinkingParser(), "text <incomplete")
		assert.Equal(t, "text <incomplete", message)
	})

	t.Run("LongAngleTextNotSwallowed", func(t *testing.T) {
		// A '<' followed by more text than any real tag could hold must be
		// flushed back out as ordinary content.
		_, message := feed(NewThinkingParser(), "if a < b then this whole clause is text")
		assert.Equal(t, "if a < b then this whole clause is text", message)
	})

	t.Run("ChunkTypesAreSet", func(t *testing.T) {
		p := NewThinkingParser()
		thinkingChunk, messageChunk := p.Parse("<thinking>a</thinking>b")
		require.NotNil(t, thinkingChunk)
		require.NotNil(t, messageChunk)
		assert.Equal(t, llm.ContentTypeThinking, thinkingChunk.Type)
		assert.Equal(t, llm.ContentTypeMessage, messageChunk.Type)
	})
}
