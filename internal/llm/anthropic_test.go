package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func messagesServer(t *testing.T, text string, check func(req anthropicRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if check != nil {
			check(req)
		}

		resp := anthropicResponse{
			ID:      "msg_123",
			Type:    "message",
			Role:    "assistant",
			Content: []anthropicContent{{Type: "text", Text: text}},
			Model:   req.Model,
			Usage:   anthropicUsage{InputTokens: 30, OutputTokens: 12},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func anthropicTestConfig(baseURL string) Config {
	return Config{
		Provider: "anthropic",
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Model:    "claude-3-5-haiku-20241022",
		Timeout:  5 * time.Second,
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{Provider: "anthropic"}, nil); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestAnthropicProvider_ExtractClaim(t *testing.T) {
	server := messagesServer(t, `{"policy_number":"PL-12345"}`, func(req anthropicRequest) {
		if req.System != extractionSystem {
			t.Errorf("Expected extraction system prompt, got %q", req.System)
		}
		if req.Temperature != 0 {
			t.Errorf("Expected temperature 0, got %v", req.Temperature)
		}
		if req.MaxTokens != 1000 {
			t.Errorf("Expected default max tokens 1000, got %d", req.MaxTokens)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("Expected one user message, got %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[0].Content, "Policy No: PL-12345") {
			t.Errorf("Expected document text in prompt, got %q", req.Messages[0].Content)
		}
	})
	defer server.Close()

	provider, err := NewAnthropicProvider(anthropicTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.ExtractClaim(context.Background(), ExtractRequest{Text: "Policy No: PL-12345"})
	if err != nil {
		t.Fatalf("ExtractClaim failed: %v", err)
	}
	if resp.Text != `{"policy_number":"PL-12345"}` {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Expected model claude-3-5-haiku-20241022, got %s", resp.Model)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Summarize(t *testing.T) {
	server := messagesServer(t, "  Water damage to the kitchen on 2025-11-28.  ", func(req anthropicRequest) {
		if req.System != summarySystem {
			t.Errorf("Expected summary system prompt, got %q", req.System)
		}
		if req.Model != "claude-3-5-sonnet-20241022" {
			t.Errorf("Expected request model override, got %s", req.Model)
		}
		if req.MaxTokens != 200 {
			t.Errorf("Expected max tokens 200, got %d", req.MaxTokens)
		}
	})
	defer server.Close()

	provider, err := NewAnthropicProvider(anthropicTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{
		Text:      "Kitchen flooded on 28/11/2025.",
		Sentences: 2,
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 200,
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.Text != "Water damage to the kitchen on 2025-11-28." {
		t.Errorf("Expected trimmed summary, got %q", resp.Text)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]string{"type": "api_error", "message": "Internal server error"},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(anthropicTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.ExtractClaim(context.Background(), ExtractRequest{Text: "Policy No: PL-12345"})
	if err == nil {
		t.Fatal("Expected error from API")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "Internal server error") {
		t.Errorf("Expected error message to be kept, got %v", err)
	}
	if !retryable(err) {
		t.Error("Expected a 500 to be retryable")
	}
}

func TestAnthropicProvider_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]string{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(anthropicTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Text: "x", Sentences: 1})
	if err == nil {
		t.Fatal("Expected error from API")
	}
	if retryable(err) {
		t.Errorf("Expected 401 to be permanent, got retryable: %v", err)
	}
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable with a rejected key")
	}
}

func TestAnthropicProvider_EmptyContent(t *testing.T) {
	server := messagesServer(t, "", nil)
	defer server.Close()

	provider, err := NewAnthropicProvider(anthropicTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.ExtractClaim(context.Background(), ExtractRequest{Text: "x"}); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	server := messagesServer(t, "Hello", func(req anthropicRequest) {
		if req.MaxTokens != 10 {
			t.Errorf("Expected a minimal request, got max tokens %d", req.MaxTokens)
		}
	})
	defer server.Close()

	provider, err := NewAnthropicProvider(anthropicTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}
}
