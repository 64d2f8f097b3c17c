package llm

import (
	"context"
	"time"
)

// Role identifies the sender of a chat-completion message: the system
// prompt that carries the filter schema and few-shot examples, the user's
// free-text query, or a prior assistant turn in the conversation history.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    Role
	Content string
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionRequest represents a request to the LLM. internal/filters sets
// JSONSchema to the schema derived from rawExtraction via pkg/schema so the
// provider returns a parseable ExtractedFilters candidate.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONSchema  map[string]any // For structured output
	StrictMode  bool           // Only honored by providers whose native JSON mode supports it (e.g. OpenAI gpt-4o)
}

// CompletionResponse represents the LLM response.
type CompletionResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
	Model        string // model that actually served the request, per the provider's response
}

// Provider is the core abstraction over LLM backends that internal/filters
// calls once per extraction turn.
type Provider interface {
	// Complete sends a completion request and returns structured output.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name returns the provider identifier.
	Name() string

	// SupportsJSONSchema returns true if provider has native JSON mode.
	SupportsJSONSchema() bool
}

// ProviderConfig holds common configuration for providers.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string // For OpenRouter or custom endpoints
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultProviderConfig returns sensible defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		MaxRetries: 3,
		Timeout:    60 * time.Second,
	}
}
