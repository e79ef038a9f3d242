package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	xlsxPath     string
	noMarkdown   bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Extract claims from many documents in parallel",
	Long: `Batch processes many claim documents concurrently:
- Read document refs (paths or s3:// URIs) from a file, one per line
- Process them with a bounded worker pool
- Write a JSON and Markdown report per document
- Optionally collect every record into one Excel workbook

Example:
  claimlens batch claims.txt
  claimlens batch claims.txt --concurrency 8 --out-dir ./reports
  claimlens batch claims.txt --xlsx claims.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "out-dir", "./claimlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write all records to an Excel workbook")
	batchCmd.Flags().BoolVar(&noMarkdown, "no-md", false, "skip per-document Markdown reports")
	addPipelineFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  claimlens batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  Model:        %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	renderer := pipeline.NewRenderer(os.Stderr)

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, logger)
	processor.OnResult(func(r *worker.DocumentResult) {
		if r.Error != nil {
			_, _ = red.Fprintf(os.Stderr, "✗ %s: %v\n", r.Ref, r.Error)
			return
		}
		if err := writeReports(renderer, r, outputDir, !noMarkdown); err != nil {
			_, _ = red.Fprintf(os.Stderr, "✗ %s: %v\n", r.Ref, err)
			return
		}
		line := green
		if !r.Report.Validation.Valid {
			line = yellow
		}
		_, _ = line.Fprintf(os.Stderr, "✓ %s (score %.2f, %d issues)\n",
			r.Ref, r.Report.Validation.Score, len(r.Report.Validation.Issues))
	})

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	if xlsxPath != "" {
		if err := writeWorkbook(results, xlsxPath); err != nil {
			return err
		}
	}

	stats := worker.Stats(results)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", stats.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", stats.Succeeded)
	fmt.Fprintf(os.Stderr, "  Valid:     %d\n", stats.Valid)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", stats.Failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	if xlsxPath != "" {
		fmt.Fprintf(os.Stderr, "  Workbook:  %s\n", xlsxPath)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func writeReports(r *pipeline.Renderer, res *worker.DocumentResult, dir string, markdown bool) error {
	base := filepath.Join(dir, fmt.Sprintf("%03d-%s", res.Index+1, sanitizeFilename(res.Ref)))
	if err := r.RenderJSON(res.Report, base+".json"); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	if markdown {
		if err := r.RenderMarkdown(res.Report, base+".md"); err != nil {
			return fmt.Errorf("failed to write Markdown: %w", err)
		}
	}
	return nil
}

func writeWorkbook(results []*worker.DocumentResult, path string) error {
	rows := make([]pipeline.ExportRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, pipeline.ExportRow{Ref: r.Ref, Report: r.Report, Err: r.Error})
	}
	data, err := pipeline.ExportXLSX(rows, logger)
	if err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a document ref into a safe file stem.
func sanitizeFilename(ref string) string {
	ref = strings.TrimPrefix(ref, "s3://")
	stem := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "document"
	}
	stem = filenameReplacer.Replace(stem)
	if len(stem) > 100 {
		stem = stem[:100]
	}
	return stem
}
