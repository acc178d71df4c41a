// Package llm provides abstractions for LLM provider integration.
//
// Providers handle API communication with LLM services and return simple
// StreamChunk instances. The agent layer is responsible for converting
// chunks to agent events and for conversation state, which keeps providers
// reusable outside the agent loop and testable on their own.
package llm

import (
	"context"

	"github.com/neutrobox/automaker/pkg/types"
)

// ContentType distinguishes the kind of text carried by a stream chunk.
type ContentType string

const (
	// ContentTypeThinking marks chunk text produced inside <thinking> tags.
	ContentTypeThinking ContentType = "thinking"

	// ContentTypeMessage marks ordinary response text.
	ContentTypeMessage ContentType = "message"
)

// StreamChunk is one unit of a streamed completion.
type StreamChunk struct {
	// Error is set on stream-time failures; other fields are then unset.
	Error error

	// Content is the text delta carried by this chunk.
	Content string

	// Role is set on the first chunk of a response (e.g. "assistant").
	Role string

	// Type indicates whether Content is thinking or message text.
	Type ContentType

	// Finished is true on the final chunk of a completed stream.
	Finished bool
}

// IsError returns true when the chunk carries a stream-time error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}

// ModelCloner is an optional interface that providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport
// with the original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// Provider defines the interface for LLM integrations.
type Provider interface {
	// StreamCompletion sends messages to the LLM and streams back response
	// chunks. The channel is closed when streaming completes or fails;
	// stream-time errors arrive as chunks with Error set. An error return
	// means streaming could not be initiated at all.
	StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *StreamChunk, error)

	// Complete accumulates a full streamed response into one message.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string
}
