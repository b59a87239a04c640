package llm

import (
	"context"
	"encoding/base64"
	"unicode/utf8"

	"github.com/ApexForge13/policyscan/internal/model"
)

// Provider defines the interface for inference providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one inference call and returns the raw text output
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompleteRequest contains the input for one inference call
type CompleteRequest struct {
	// System is the system prompt establishing the output contract
	System string

	// Prompt is the user-facing instruction text
	Prompt string

	// Document holds the raw policy document bytes. Providers with native
	// document support attach it directly; others inline a text rendering.
	Document []byte

	// MediaType of Document (defaults to application/pdf)
	MediaType string

	// Model overrides the configured model when non-empty
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// CompleteResponse contains the inference output
type CompleteResponse struct {
	// Text is the raw model output (expected to be JSON for extraction calls)
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds inference provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings for outbound HTTP
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Model:     "",
		Timeout:   120,
		MaxTokens: 8192,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  mc.HTTPProxy,
		HTTPSProxy: mc.HTTPSProxy,
		NoProxy:    mc.NoProxy,
	}
}

// documentAsText renders document bytes for providers without native
// document attachments: valid UTF-8 passes through, binary content is
// base64-encoded so the call still carries the full document.
func documentAsText(doc []byte) string {
	if utf8.Valid(doc) {
		return string(doc)
	}
	return base64.StdEncoding.EncodeToString(doc)
}
