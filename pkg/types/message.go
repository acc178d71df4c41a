package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat message exchanged with an LLM provider.
type Message struct {
	Role    MessageRole
	Content string
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the LLM model behind a provider.
type ModelInfo struct {
	// Metadata holds provider-specific details (base URL, etc.).
	Metadata map[string]interface{}

	// Provider is the provider family, e.g. "openai".
	Provider string

	// Name is the model identifier.
	Name string

	// SupportsStreaming reports whether the model streams responses.
	SupportsStreaming bool

	// MaxTokens is the model's context limit, when known.
	MaxTokens int
}
