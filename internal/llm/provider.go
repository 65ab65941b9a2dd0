package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive the completion.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its response.
	// When the request's Schema is set the provider asks for JSON
	// conforming to it and validates the result before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Question generation sends a
	// single user message per call.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response Content is the raw completion text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "question-batch".
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// requested, otherwise the completion text as-is.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string

	// Cached is set when the response was served from a completion cache.
	Cached bool

	// Attempts is the number of tries the retry decorator needed. Zero
	// when the call did not go through it.
	Attempts int
}

// Text returns the content as a string.
func (r *Response) Text() string {
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
