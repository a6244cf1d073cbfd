package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"` // One of RoleSystem, RoleUser, RoleAssistant.
	Content string `json:"content"`
}

// Role constants for the Message.Role field.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Response contains the generated text and metadata of a non-streaming call.
type Response struct {
	Content  string `json:"content"`  // Generated text.
	Model    string `json:"model"`    // Model that produced this response.
	Provider string `json:"provider"` // Upstream provider that served the request.
	Usage    Usage  `json:"usage"`    // Token consumption stats.
}

// Usage tracks token consumption for a single call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
