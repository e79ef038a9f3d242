package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/source"
)

var (
	watchDebounce time.Duration
	watchExisting bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract claims from OCR files dropped into a directory",
	Long: `Watch monitors a drop directory (recursively) for new or rewritten
.txt, .hocr and .html files and writes <name>.extraction.json next to each.

Example:
  claimlens watch ./inbox
  claimlens watch ./inbox --existing=false`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait for writes to settle before processing")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", true, "process files already in the directory")
	addPipelineFlags(watchCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	paths, errs, err := source.Watch(ctx, source.WatchConfig{
		Roots:       []string{dir},
		InitialScan: watchExisting,
		Debounce:    watchDebounce,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Watching %s (Ctrl+C to stop)\n", dir)
	return consumeWatch(ctx, p, paths, errs)
}

func consumeWatch(ctx context.Context, p *pipeline.Pipeline, paths <-chan string, errs <-chan error) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	renderer := pipeline.NewRenderer(os.Stderr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			report, err := p.ProcessRef(ctx, path)
			if err != nil {
				_, _ = red.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
				continue
			}
			out := extractionPath(path)
			if err := renderer.RenderJSON(report, out); err != nil {
				_, _ = red.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
				continue
			}
			_, _ = green.Fprintf(os.Stderr, "✓ %s → %s (score %.2f)\n", path, filepath.Base(out), report.Validation.Score)
		}
	}
}

// extractionPath maps scans/0042.hocr to scans/0042.extraction.json.
func extractionPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".extraction.json"
}
