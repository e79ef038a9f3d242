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

func generateServer(t *testing.T, response string, check func(req ollamaRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
			return
		}
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected stream to be false")
		}
		if check != nil {
			check(req)
		}

		resp := ollamaResponse{
			Model:           req.Model,
			Response:        response,
			Done:            true,
			PromptEvalCount: 25,
			EvalCount:       15,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func ollamaTestConfig(baseURL string) Config {
	return Config{
		Provider: "ollama",
		BaseURL:  baseURL,
		Model:    "llama3.1:8b",
		Timeout:  5 * time.Second,
	}
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider, err := NewOllamaProvider(Config{Provider: "ollama"}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.baseURL != "http://localhost:11434" {
		t.Errorf("Expected default base URL, got %s", provider.baseURL)
	}
	if provider.model("") != "llama3.1:8b" {
		t.Errorf("Expected default model llama3.1:8b, got %s", provider.model(""))
	}
}

func TestOllamaProvider_ExtractClaim(t *testing.T) {
	server := generateServer(t, `{"policy_number":"PL-12345"}`, func(req ollamaRequest) {
		if req.Format != "json" {
			t.Errorf("Expected json format, got %q", req.Format)
		}
		if req.System != extractionSystem {
			t.Errorf("Expected extraction system prompt, got %q", req.System)
		}
		if req.Options.Temperature != 0 {
			t.Errorf("Expected temperature 0, got %v", req.Options.Temperature)
		}
		if !strings.Contains(req.Prompt, "Policy No: PL-12345") {
			t.Errorf("Expected document text in prompt, got %q", req.Prompt)
		}
	})
	defer server.Close()

	provider, err := NewOllamaProvider(ollamaTestConfig(server.URL), nil)
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
	if resp.Model != "llama3.1:8b" {
		t.Errorf("Expected model llama3.1:8b, got %s", resp.Model)
	}
	if resp.TokensUsed != 40 {
		t.Errorf("Expected 40 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Summarize(t *testing.T) {
	server := generateServer(t, "Kitchen flooded on 2025-11-28.\n", func(req ollamaRequest) {
		if req.Format != "" {
			t.Errorf("Expected plain text format, got %q", req.Format)
		}
		if req.System != summarySystem {
			t.Errorf("Expected summary system prompt, got %q", req.System)
		}
		if req.Options.NumPredict != 150 {
			t.Errorf("Expected num_predict 150, got %d", req.Options.NumPredict)
		}
	})
	defer server.Close()

	cfg := ollamaTestConfig(server.URL)
	cfg.MaxTokens = 150
	provider, err := NewOllamaProvider(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Text: "Kitchen flooded.", Sentences: 1})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.Text != "Kitchen flooded on 2025-11-28." {
		t.Errorf("Expected trimmed summary, got %q", resp.Text)
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model 'llama3.1:8b' not found"})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(ollamaTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.ExtractClaim(context.Background(), ExtractRequest{Text: "x"})
	if err == nil {
		t.Fatal("Expected error from API")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %T: %v", err, err)
	}
	if !strings.Contains(statusErr.Message, "not found") {
		t.Errorf("Expected Ollama error message, got %q", statusErr.Message)
	}
	if retryable(err) {
		t.Error("Expected a missing model to be permanent")
	}
}

func TestOllamaProvider_EmptyResponse(t *testing.T) {
	server := generateServer(t, "   ", nil)
	defer server.Close()

	provider, err := NewOllamaProvider(ollamaTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Summarize(context.Background(), SummarizeRequest{Text: "x", Sentences: 1}); err == nil {
		t.Error("Expected error for empty response")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := generateServer(t, "", nil)
	provider, err := NewOllamaProvider(ollamaTestConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after server shutdown")
	}
}
