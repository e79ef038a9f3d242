package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/validate"
)

// Extractor runs the hosted-model path for one document: JSON extraction,
// schema check, independent validation and an optional summary.
type Extractor struct {
	provider  Provider
	config    Config
	retrier   *Retrier
	validator *validate.Validator
	logger    *slog.Logger
}

// NewExtractor wraps provider with retries and validation.
func NewExtractor(provider Provider, config Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		provider:  provider,
		config:    config,
		retrier:   NewRetrier(config.Retries, config.Backoff, logger),
		validator: validate.NewValidator(),
		logger:    logger,
	}
}

// Name returns the underlying provider name.
func (e *Extractor) Name() string {
	return e.provider.Name()
}

// Run never fails: provider and decoding problems become warnings on the
// returned result.
func (e *Extractor) Run(ctx context.Context, text string, sentences int) *model.ModelResult {
	result := &model.ModelResult{
		Enabled:  true,
		Provider: e.provider.Name(),
		Model:    e.config.Model,
	}

	var completion *Completion
	err := e.retrier.Do(ctx, "extract", func(ctx context.Context) error {
		var err error
		completion, err = e.provider.ExtractClaim(ctx, ExtractRequest{
			Text:      text,
			Model:     e.config.Model,
			MaxTokens: e.config.MaxTokens,
		})
		return err
	})
	if err != nil {
		e.warn(result, "extraction failed: %v", err)
	} else {
		e.accept(result, completion)
	}

	if e.config.Summarize {
		var summary *Completion
		err := e.retrier.Do(ctx, "summarize", func(ctx context.Context) error {
			var err error
			summary, err = e.provider.Summarize(ctx, SummarizeRequest{
				Text:      text,
				Sentences: sentences,
				Model:     e.config.Model,
				MaxTokens: e.config.MaxTokens,
			})
			return err
		})
		if err != nil {
			e.warn(result, "summary failed: %v", err)
		} else {
			result.Summary = summary.Text
			result.TokensUsed += summary.TokensUsed
		}
	}

	return result
}

func (e *Extractor) accept(result *model.ModelResult, completion *Completion) {
	if completion.Model != "" {
		result.Model = completion.Model
	}
	result.TokensUsed += completion.TokensUsed

	rec, err := validate.DecodeClaimJSON([]byte(SanitizeJSON(completion.Text)))
	if err != nil {
		e.warn(result, "model output rejected: %v", err)
		return
	}

	vr := e.validator.Validate(rec)
	result.Record = &rec
	result.Validation = &vr
	e.logger.Debug("llm.extracted", "provider", result.Provider, "valid", vr.Valid, "score", vr.Score)
}

func (e *Extractor) warn(result *model.ModelResult, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	e.logger.Warn("llm.warning", "provider", result.Provider, "warning", msg)
}

// SanitizeJSON strips code fences and surrounding prose, keeping the span
// from the first '{' to the last '}'.
func SanitizeJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}
