package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string, check func(req openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if check != nil {
			check(req)
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 42},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(baseURL string) Config {
	return Config{
		Provider: "openai",
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Model:    "gpt-4o-mini",
		Timeout:  5 * time.Second,
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}, nil); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestOpenAIProvider_ExtractClaim(t *testing.T) {
	server := chatServer(t, `{"policy_number":"PL-12345"}`, func(req openai.ChatCompletionRequest) {
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Errorf("Expected JSON response format, got %+v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(req.Messages))
		}
		if !strings.Contains(req.Messages[1].Content, "Policy No: PL-12345") {
			t.Errorf("Expected document text in prompt, got %q", req.Messages[1].Content)
		}
	})
	defer server.Close()

	provider, err := NewOpenAIProvider(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.ExtractClaim(context.Background(), ExtractRequest{Text: "Policy No: PL-12345"})
	if err != nil {
		t.Fatalf("ExtractClaim failed: %v", err)
	}
	if resp.Text != `{"policy_number":"PL-12345"}` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", resp.Model)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Summarize(t *testing.T) {
	server := chatServer(t, "  Water damage in the kitchen.  ", func(req openai.ChatCompletionRequest) {
		if req.ResponseFormat != nil {
			t.Errorf("Expected plain text response format, got %+v", req.ResponseFormat)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("Expected request model override gpt-4o, got %s", req.Model)
		}
	})
	defer server.Close()

	provider, err := NewOpenAIProvider(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Text: "doc", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.Text != "Water damage in the kitchen." {
		t.Errorf("Expected trimmed summary, got %q", resp.Text)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.ExtractClaim(context.Background(), ExtractRequest{Text: "doc"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !retryable(err) {
		t.Errorf("Expected server error to be retryable: %v", err)
	}
}

func TestOpenAIProvider_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.ExtractClaim(context.Background(), ExtractRequest{Text: "doc"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if retryable(err) {
		t.Errorf("Expected 401 to be permanent: %v", err)
	}
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable with a rejected key")
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "chatcmpl-empty"})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Summarize(context.Background(), SummarizeRequest{Text: "doc"}); err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestOpenAIProvider_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := provider.ExtractClaim(ctx, ExtractRequest{Text: "doc"}); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
