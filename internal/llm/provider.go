// Package llm is the optional hosted-model path. It asks a chat model for
// the same claim fields the rule-based extractor produces and validates the
// answer independently. It never replaces the rule-based record.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("llm: no provider configured")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractClaim asks the model for a single JSON claim object
	ExtractClaim(ctx context.Context, req ExtractRequest) (*Completion, error)

	// Summarize asks the model for a short plain-text summary
	Summarize(ctx context.Context, req SummarizeRequest) (*Completion, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the document text for claim extraction.
type ExtractRequest struct {
	Text      string
	Model     string // Overrides Config.Model
	MaxTokens int
}

// SummarizeRequest contains the document text for summarization.
type SummarizeRequest struct {
	Text      string
	Sentences int
	Model     string
	MaxTokens int
}

// Completion is the raw model answer.
type Completion struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic" ("claude"), "ollama" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL for OpenAI-compatible endpoints
	BaseURL string

	// Timeout per request
	Timeout time.Duration

	MaxTokens int

	// Retries is the total number of attempts per call
	Retries int

	// Backoff is the wait before the second attempt; it doubles after each failure
	Backoff time.Duration

	// Summarize also requests a model summary
	Summarize bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "gpt-4o-mini",
		Timeout:   30 * time.Second,
		MaxTokens: 1000,
		Retries:   3,
		Backoff:   1200 * time.Millisecond,
		Summarize: true,
	}
}
