package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/claimlens/internal/model"
)

// Processor turns one document reference into a report.
type Processor interface {
	ProcessRef(ctx context.Context, ref string) (*model.Report, error)
}

// DocumentJob processes one reference.
type DocumentJob struct {
	Index     int
	Ref       string
	Processor Processor
	done      func(*DocumentResult)
}

// Execute executes the document job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Processor.ProcessRef(ctx, j.Ref)
	result := &DocumentResult{
		Index:    j.Index,
		Ref:      j.Ref,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Report = nil
	}
	if j.done != nil {
		j.done(result)
	}
	return result
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	Index    int
	Ref      string
	Report   *model.Report
	Error    error
	Duration time.Duration
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchStats summarizes a batch run.
type BatchStats struct {
	Total     int
	Succeeded int
	Failed    int
	Valid     int // Succeeded with a valid rule-based record
}

// Stats counts outcomes in results.
func Stats(results []*DocumentResult) BatchStats {
	s := BatchStats{Total: len(results)}
	for _, r := range results {
		if r.Error != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.Report != nil && r.Report.Validation.Valid {
			s.Valid++
		}
	}
	return s
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
	logger      *slog.Logger

	mu       sync.Mutex
	onResult func(*DocumentResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// OnResult registers a callback invoked as each document finishes.
// Calls are serialized.
func (b *BatchProcessor) OnResult(fn func(*DocumentResult)) {
	b.onResult = fn
}

// ProcessRefs processes refs concurrently and returns results in input order.
func (b *BatchProcessor) ProcessRefs(ctx context.Context, refs []string) []*DocumentResult {
	if len(refs) == 0 {
		return []*DocumentResult{}
	}

	start := time.Now()
	b.logger.Info("batch.start", "documents", len(refs), "workers", b.concurrency)

	jobs := make([]Job, len(refs))
	for i, ref := range refs {
		jobs[i] = &DocumentJob{
			Index:     i,
			Ref:       ref,
			Processor: b.processor,
			done:      b.notify,
		}
	}

	results := NewPool(ctx, b.concurrency).Run(jobs)

	docResults := make([]*DocumentResult, 0, len(results))
	for _, result := range results {
		docResults = append(docResults, result.(*DocumentResult))
	}
	sort.Slice(docResults, func(i, j int) bool {
		return docResults[i].Index < docResults[j].Index
	})

	stats := Stats(docResults)
	b.logger.Info("batch.done",
		"documents", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"valid", stats.Valid,
		"elapsed", time.Since(start))

	return docResults
}

func (b *BatchProcessor) notify(r *DocumentResult) {
	if r.Error != nil {
		b.logger.Warn("batch.document_failed", "ref", r.Ref, "error", r.Error)
	}
	if b.onResult == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onResult(r)
}

// ProcessFile reads refs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DocumentResult, error) {
	refs, err := ReadRefsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read refs: %w", err)
	}

	return b.ProcessRefs(ctx, refs), nil
}

// ReadRefsFromFile reads document references (paths or s3:// URIs) from a
// file, one per line. Blank lines and # comments are skipped; duplicates
// are dropped.
func ReadRefsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var refs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			refs = append(refs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return refs, nil
}
