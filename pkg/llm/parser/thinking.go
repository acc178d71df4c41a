// Package parser provides utilities for parsing structured content from
// LLM streams.
package parser

import (
	"strings"

	"github.com/neutrobox/automaker/pkg/llm"
)

// ThinkingParser separates <thinking> sections from regular content in a
// token stream. Tags may be split across chunk boundaries, so a potential
// tag is buffered from '<' until '>' before being classified.
type ThinkingParser struct {
	buffer     strings.Builder
	tagBuffer  strings.Builder
	inThinking bool
	inTag      bool
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{}
}

// Parse processes one content chunk and returns up to two chunks: thinking
// text and message text found in it. Either may be nil.
func (p *ThinkingParser) Parse(content string) (thinkingChunk, messageChunk *llm.StreamChunk) {
	if content == "" {
		return nil, nil
	}

	for _, ch := range content {
		if ch == '<' {
			if p.inTag {
				// The previous '<' never closed into a tag; flush it as text.
				chunk := p.flushTagBuffer()
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
			}
			if p.buffer.Len() > 0 {
				chunk := p.textChunk(p.buffer.String())
				p.buffer.Reset()
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
			}
			p.inTag = true
			p.tagBuffer.Reset()
			p.tagBuffer.WriteRune(ch)
			continue
		}

		if ch == '>' && p.inTag {
			p.tagBuffer.WriteRune(ch)
			tag := p.tagBuffer.String()
			p.tagBuffer.Reset()
			p.inTag = false

			switch tag {
			case "<thinking>":
				p.inThinking = true
			case "</thinking>":
				p.inThinking = false
			default:
				chunk := p.textChunk(tag)
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
			}
			continue
		}

		if p.inTag {
			p.tagBuffer.WriteRune(ch)
			// A real tag stays short; anything longer is ordinary text.
			if p.tagBuffer.Len() > len("</thinking>") {
				chunk := p.flushTagBuffer()
				p.inTag = false
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
			}
			continue
		}

		p.buffer.WriteRune(ch)
	}

	if p.buffer.Len() > 0 {
		chunk := p.textChunk(p.buffer.String())
		p.buffer.Reset()
		thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
	}

	return thinkingChunk, messageChunk
}

// Flush returns any buffered content as final chunks. Call once at end of
// stream so partially-buffered tags are not silently dropped.
func (p *ThinkingParser) Flush() (thinkingChunk, messageChunk *llm.StreamChunk) {
	if p.inTag {
		chunk := p.flushTagBuffer()
		p.inTag = false
		thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
	}
	if p.buffer.Len() > 0 {
		chunk := p.textChunk(p.buffer.String())
		p.buffer.Reset()
		thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
	}
	return thinkingChunk, messageChunk
}

func (p *ThinkingParser) flushTagBuffer() *llm.StreamChunk {
	text := p.tagBuffer.String()
	p.tagBuffer.Reset()
	return p.textChunk(text)
}

func (p *ThinkingParser) textChunk(text string) *llm.StreamChunk {
	chunkType := llm.ContentTypeMessage
	if p.inThinking {
		chunkType = llm.ContentTypeThinking
	}
	return &llm.StreamChunk{Type: chunkType, Content: text}
}

// merge folds a new chunk into the per-call thinking/message accumulators
// so each Parse call emits at most one chunk per content type.
func (p *ThinkingParser) merge(thinkingChunk, messageChunk, chunk *llm.StreamChunk) (*llm.StreamChunk, *llm.StreamChunk) {
	if chunk == nil {
		return thinkingChunk, messageChunk
	}
	if chunk.Type == llm.ContentTypeThinking {
		if thinkingChunk == nil {
			return chunk, messageChunk
		}
		thinkingChunk.Content += chunk.Content
		return thinkingChunk, messageChunk
	}
	if messageChunk == nil {
		return thinkingChunk, chunk
	}
	messageChunk.Content += chunk.Content
	return thinkingChunk, messageChunk
}
