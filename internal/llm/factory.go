package llm

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name returns ErrDisabled.
func NewProvider(config Config, logger *slog.Logger) (Provider, error) {
	switch providerName(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config, logger)

	case "anthropic":
		return NewAnthropicProvider(config, logger)

	case "ollama":
		return NewOllamaProvider(config, logger)

	case "":
		return nil, ErrDisabled

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

func providerName(s string) string {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "claude" {
		return "anthropic"
	}
	return name
}

// ConfigFromModel converts model.LLMConfig to llm.Config. A missing key
// falls back to the provider's environment variable, and ollama reads
// OLLAMA_HOST when no base URL is set. An OpenAI model name left over from
// the defaults is dropped for other providers so they use their own.
func ConfigFromModel(c model.LLMConfig) Config {
	name := providerName(c.Provider)

	apiKey := c.APIKey
	if apiKey == "" {
		switch name {
		case "anthropic":
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		case "ollama":
		default:
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	baseURL := c.BaseURL
	if baseURL == "" && name == "ollama" {
		baseURL = os.Getenv("OLLAMA_HOST")
		if baseURL != "" && !strings.Contains(baseURL, "://") {
			baseURL = "http://" + baseURL
		}
	}

	modelName := c.Model
	if name == "anthropic" || name == "ollama" {
		if strings.HasPrefix(modelName, "gpt-") {
			modelName = ""
		}
	}

	return Config{
		Provider:   c.Provider,
		Model:      modelName,
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		Retries:    c.Retries,
		Backoff:    c.Backoff,
		Summarize:  c.Summarize,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
	}
}
