// Package pipeline wires sources, the rule-based extractor, the validator,
// summaries, caching and the optional hosted-model path into per-document
// reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/claimlens/internal/cache"
	"github.com/ppiankov/claimlens/internal/extract"
	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/source"
	"github.com/ppiankov/claimlens/internal/summarize"
	"github.com/ppiankov/claimlens/internal/validate"
	"github.com/ppiankov/claimlens/internal/worker"
)

// ErrNoInput is returned when the caller supplied no document at all.
// An empty document is not an error; it yields an all-absent record.
var ErrNoInput = errors.New("no input text supplied")

// ModelRunner is the hosted-model path. *llm.Extractor implements it.
type ModelRunner interface {
	Name() string
	Run(ctx context.Context, text string, sentences int) *model.ModelResult
}

// Pipeline orchestrates extraction for single documents. It is safe for
// concurrent use.
type Pipeline struct {
	source    source.Source
	extractor *extract.Extractor
	validator *validate.Validator
	cache     cache.Cache
	model     ModelRunner // nil when the hosted model is disabled
	limiter   *worker.Limiter
	config    *model.Config
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource sets the document source used by ProcessRef.
func WithSource(s source.Source) Option {
	return func(p *Pipeline) { p.source = s }
}

// WithCache sets the report cache.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithModel enables the hosted-model path.
func WithModel(m ModelRunner) Option {
	return func(p *Pipeline) { p.model = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline from cfg. Collaborators not supplied via
// options default to a local file source, no cache and no hosted model.
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	p := &Pipeline{
		validator: validate.NewValidator(),
		cache:     cache.NoopCache{},
		limiter:   worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		config:    cfg,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		p.source = &source.Resolver{Files: source.NewFileSource(cfg.Source.MaxBytes), Stdin: os.Stdin}
	}
	p.extractor = extract.FromConfig(cfg.Extract, p.logger)

	return p
}

// New builds a fully wired pipeline: file, stdin and (when a bucket or
// endpoint is configured) S3 sources, the configured cache and the hosted
// model when a provider is set.
func New(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resolver := &source.Resolver{
		Files: source.NewFileSource(cfg.Source.MaxBytes),
		Stdin: os.Stdin,
	}
	if cfg.S3.Bucket != "" || cfg.S3.Endpoint != "" {
		s3src, err := source.NewS3Source(ctx, cfg.S3, cfg.Source.MaxBytes)
		if err != nil {
			return nil, fmt.Errorf("s3 source: %w", err)
		}
		resolver.S3 = s3src
	}

	opts := []Option{
		WithSource(resolver),
		WithCache(cache.New(cfg.Cache)),
		WithLogger(logger),
	}

	llmCfg := llm.ConfigFromModel(cfg.LLM)
	provider, err := llm.NewProvider(llmCfg, logger)
	switch {
	case errors.Is(err, llm.ErrDisabled):
	case err != nil:
		return nil, fmt.Errorf("llm provider: %w", err)
	default:
		opts = append(opts, WithModel(llm.NewExtractor(provider, llmCfg, logger)))
	}

	return NewPipeline(cfg, opts...), nil
}

// ProcessRef reads ref from the configured source and processes it.
func (p *Pipeline) ProcessRef(ctx context.Context, ref string) (*model.Report, error) {
	doc, err := p.source.Read(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return p.ProcessDocument(ctx, doc)
}

// ProcessText processes text supplied directly by a caller.
func (p *Pipeline) ProcessText(ctx context.Context, ref, text string) (*model.Report, error) {
	return p.ProcessDocument(ctx, source.NewDocument(ref, text, ""))
}

// ProcessDocument extracts, validates and summarizes doc. Hosted-model
// failures are recorded on the report, never returned.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *model.Document) (*model.Report, error) {
	if doc == nil {
		return nil, ErrNoInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := p.now()
	key := cache.CacheKey(doc.Text, p.fingerprint())

	var cached model.Report
	if cache.GetJSON(p.cache, key, &cached) {
		cached.DocumentID = doc.ID
		cached.Source = doc.Source
		cached.Cached = true
		p.logger.Debug("pipeline.cache_hit", "source", doc.Source)
		return &cached, nil
	}

	rec := p.extractor.Extract(doc.Text)
	report := &model.Report{
		DocumentID:  doc.ID,
		Source:      doc.Source,
		ExtractedAt: start.UTC(),
		Record:      rec,
		Validation:  p.validator.Validate(rec),
	}

	if p.config.Summary.Enabled {
		report.Summary = summarize.Summarize(doc.Text, p.config.Summary.Sentences)
	}

	if p.model != nil {
		report.Model = p.runModel(ctx, doc.Text)
	}

	// Reports with model warnings are retried on the next run.
	if report.Model == nil || len(report.Model.Warnings) == 0 {
		if err := cache.SetJSON(p.cache, key, report, 0); err != nil {
			p.logger.Warn("pipeline.cache_write_failed", "source", doc.Source, "error", err)
		}
	}

	p.logger.Info("pipeline.done",
		"source", doc.Source,
		"valid", report.Validation.Valid,
		"score", report.Validation.Score,
		"issues", len(report.Validation.Issues),
		"elapsed_ms", p.now().Sub(start).Milliseconds())

	return report, nil
}

// ModelEnabled reports whether the hosted-model path is wired.
func (p *Pipeline) ModelEnabled() bool {
	return p.model != nil
}

func (p *Pipeline) runModel(ctx context.Context, text string) *model.ModelResult {
	if err := p.limiter.Wait(ctx, p.model.Name()); err != nil {
		return &model.ModelResult{
			Enabled:  true,
			Provider: p.model.Name(),
			Warnings: []string{fmt.Sprintf("rate limit wait: %v", err)},
		}
	}
	return p.model.Run(ctx, text, p.config.Summary.Sentences)
}

// fingerprint captures every setting that changes a report for the same text.
func (p *Pipeline) fingerprint() string {
	c := p.config
	parts := []string{
		strconv.Itoa(c.Extract.ChunkSize),
		strconv.Itoa(c.Extract.TopK),
		c.Extract.Query,
		c.Extract.Ranker,
		strconv.FormatBool(c.Extract.Supplemental),
		strconv.FormatBool(c.Summary.Enabled),
		strconv.Itoa(c.Summary.Sentences),
	}
	if p.model != nil {
		parts = append(parts, p.model.Name(), c.LLM.Model, strconv.FormatBool(c.LLM.Summarize))
	}
	return strings.Join(parts, "|")
}
