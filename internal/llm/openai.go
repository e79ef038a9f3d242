package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config, logger *slog.Logger) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(0, config.HTTPProxy, config.HTTPSProxy)

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models is the lightest authenticated call
	_, err := p.client.ListModels(ctx)
	if err != nil {
		p.logger.Warn("llm.unavailable", "provider", p.Name(), "error", err)
		return false
	}
	return true
}

// ExtractClaim requests a JSON object holding the claim fields.
func (p *OpenAIProvider) ExtractClaim(ctx context.Context, req ExtractRequest) (*Completion, error) {
	prompt, err := BuildExtractionPrompt(req.Text)
	if err != nil {
		return nil, fmt.Errorf("build extraction prompt: %w", err)
	}

	return p.complete(ctx, chatCall{
		system:    extractionSystem,
		prompt:    prompt,
		model:     req.Model,
		maxTokens: req.MaxTokens,
		json:      true,
	})
}

// Summarize generates a summary using OpenAI's Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*Completion, error) {
	prompt, err := BuildSummaryPrompt(req.Text, req.Sentences)
	if err != nil {
		return nil, fmt.Errorf("build summary prompt: %w", err)
	}

	return p.complete(ctx, chatCall{
		system:    summarySystem,
		prompt:    prompt,
		model:     req.Model,
		maxTokens: req.MaxTokens,
	})
}

type chatCall struct {
	system    string
	prompt    string
	model     string
	maxTokens int
	json      bool
}

func (p *OpenAIProvider) complete(ctx context.Context, call chatCall) (*Completion, error) {
	model := call.model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := call.maxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: call.system},
			{Role: openai.ChatMessageRoleUser, Content: call.prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	}
	if call.json {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &Completion{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
