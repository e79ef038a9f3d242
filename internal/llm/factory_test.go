package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/claimlens/internal/model"
)

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(Config{}, nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled for empty provider, got %v", err)
	}

	if _, err := NewProvider(Config{Provider: "bedrock"}, nil); err == nil {
		t.Error("Expected error for unknown provider")
	}

	p, err := NewProvider(Config{Provider: " OpenAI ", APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("Expected openai provider, got %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Expected name openai, got %s", p.Name())
	}

	for provider, want := range map[string]string{
		"anthropic": "anthropic",
		"Claude":    "anthropic",
		"ollama":    "ollama",
	} {
		p, err := NewProvider(Config{Provider: provider, APIKey: "k"}, nil)
		if err != nil {
			t.Fatalf("Expected %s provider, got %v", provider, err)
		}
		if p.Name() != want {
			t.Errorf("Expected name %s for %q, got %s", want, provider, p.Name())
		}
	}
}

func TestConfigFromModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg := ConfigFromModel(model.LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Timeout:  10 * time.Second,
		Retries:  2,
		Backoff:  time.Second,
	})
	if cfg.APIKey != "env-key" {
		t.Errorf("Expected env fallback key, got %q", cfg.APIKey)
	}
	if cfg.Retries != 2 || cfg.Backoff != time.Second || cfg.Timeout != 10*time.Second {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	cfg = ConfigFromModel(model.LLMConfig{APIKey: "explicit"})
	if cfg.APIKey != "explicit" {
		t.Errorf("Expected explicit key to win, got %q", cfg.APIKey)
	}
}

func TestConfigFromModel_Anthropic(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")

	cfg := ConfigFromModel(model.LLMConfig{Provider: "anthropic", Model: "gpt-4o-mini"})
	if cfg.APIKey != "anthropic-key" {
		t.Errorf("Expected ANTHROPIC_API_KEY fallback, got %q", cfg.APIKey)
	}
	if cfg.Model != "" {
		t.Errorf("Expected OpenAI default model to be dropped, got %q", cfg.Model)
	}

	cfg = ConfigFromModel(model.LLMConfig{Provider: "claude", Model: "claude-3-5-sonnet-20241022"})
	if cfg.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("Expected explicit Claude model to be kept, got %q", cfg.Model)
	}
}

func TestConfigFromModel_Ollama(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("OLLAMA_HOST", "gpu-box:11434")

	cfg := ConfigFromModel(model.LLMConfig{Provider: "ollama", Model: "gpt-4o-mini"})
	if cfg.APIKey != "" {
		t.Errorf("Expected no API key for ollama, got %q", cfg.APIKey)
	}
	if cfg.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected OLLAMA_HOST fallback, got %q", cfg.BaseURL)
	}
	if cfg.Model != "" {
		t.Errorf("Expected OpenAI default model to be dropped, got %q", cfg.Model)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "" {
		t.Errorf("Expected disabled provider by default, got %q", cfg.Provider)
	}
	if cfg.Retries != 3 || cfg.Backoff != 1200*time.Millisecond {
		t.Errorf("Expected 3 retries with 1.2s backoff, got %d and %v", cfg.Retries, cfg.Backoff)
	}
}
