// Package extract turns OCR text into a ClaimRecord using relevance-ranked
// chunks and an ordered cascade of patterns and field-specific fallbacks.
package extract

import (
	"log/slog"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/retrieve"
)

// Extractor is the extraction orchestrator. It holds no mutable state and
// may be shared between goroutines.
type Extractor struct {
	ranker       retrieve.Ranker
	cascade      *Cascade
	chunkSize    int
	topK         int
	query        string
	supplemental bool
	logger       *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRanker sets the chunk ranker. Use retrieve.PassthroughRanker to
// disable relevance ranking.
func WithRanker(r retrieve.Ranker) Option {
	return func(e *Extractor) {
		if r != nil {
			e.ranker = r
		}
	}
}

// WithPatterns replaces the built-in pattern table.
func WithPatterns(t PatternTable) Option {
	return func(e *Extractor) {
		e.cascade = NewCascade(t)
	}
}

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithTopK sets how many ranked chunks form the candidate pool.
func WithTopK(k int) Option {
	return func(e *Extractor) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithQuery sets the retrieval query.
func WithQuery(q string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(q) != "" {
			e.query = q
		}
	}
}

// WithSupplementalFields toggles the optional labelled fields.
func WithSupplementalFields(enabled bool) Option {
	return func(e *Extractor) {
		e.supplemental = enabled
	}
}

// WithLogger sets the logger used for per-field debug events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an extractor with TF-IDF ranking and the built-in
// patterns unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		ranker:    retrieve.NewTFIDFRanker(),
		cascade:   NewCascade(DefaultPatterns()),
		chunkSize: retrieve.DefaultChunkSize,
		topK:      retrieve.DefaultTopK,
		query:     model.DefaultQuery,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig builds an extractor from the extract section of the config.
func FromConfig(cfg model.ExtractConfig, logger *slog.Logger) *Extractor {
	return NewExtractor(
		WithRanker(retrieve.NewRanker(cfg.Ranker)),
		WithChunkSize(cfg.ChunkSize),
		WithTopK(cfg.TopK),
		WithQuery(cfg.Query),
		WithSupplementalFields(cfg.Supplemental),
		WithLogger(logger),
	)
}

// Extract returns the claim record for text. It never fails: fields that
// cannot be recovered are left absent.
func (e *Extractor) Extract(text string) model.ClaimRecord {
	rec, _ := e.Explain(text)
	return rec
}

// Explain is Extract plus the candidate that produced each present core
// field, in field order.
func (e *Extractor) Explain(text string) (model.ClaimRecord, []model.FieldCandidate) {
	text = PrepareText(text)

	chunks := retrieve.Chunk(text, e.chunkSize)
	ranked := e.ranker.Rank(chunks, e.query, e.topK)

	pool := make([]model.ScoredChunk, 0, len(ranked))
	parts := make([]string, 0, len(ranked))
	for _, sc := range ranked {
		if strings.TrimSpace(sc.Text) == "" {
			continue
		}
		pool = append(pool, sc)
		parts = append(parts, sc.Text)
	}

	fc := &fieldContext{
		full:    text,
		pool:    strings.Join(parts, "\n\n"),
		ranked:  pool,
		cascade: e.cascade,
	}

	var rec model.ClaimRecord
	var candidates []model.FieldCandidate
	for _, field := range model.CoreFields {
		c, ok := e.resolve(fc, field)
		if !ok {
			continue
		}
		rec.Set(field, c.Value)
		candidates = append(candidates, c)
	}

	if e.supplemental {
		addSupplemental(&rec, text)
	}

	return rec, candidates
}

func (e *Extractor) resolve(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	for _, s := range fieldStrategies[field] {
		c, ok := s.run(fc, field)
		if !ok {
			continue
		}
		e.logger.Debug("extract.field",
			"field", string(field),
			"strategy", s.name,
			"tier", string(c.Tier),
		)
		return c, true
	}
	e.logger.Debug("extract.field.absent", "field", string(field))
	return model.FieldCandidate{Field: field}, false
}
