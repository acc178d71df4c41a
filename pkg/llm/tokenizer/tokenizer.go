// Package tokenizer provides client-side token counting so sessions can
// report usage without waiting for provider-side accounting.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/neutrobox/automaker/pkg/types"
)

const defaultEncoding = "cl100k_base"

// messageOverheadTokens approximates the per-message framing cost of the
// chat format (role, separators).
const messageOverheadTokens = 4

// Tokenizer counts tokens using a tiktoken encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer with the default cl100k_base encoding.
func New() (*Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", defaultEncoding, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the token count of a text fragment.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessagesTokens returns the approximate token count of a message
// list, including per-message framing overhead.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += t.CountTokens(msg.Content) + t.CountTokens(string(msg.Role)) + messageOverheadTokens
	}
	return total
}
