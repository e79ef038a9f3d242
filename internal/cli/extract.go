package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/source"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	noCache     bool
	noSummary   bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
	ranker      string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file|s3://bucket/key|-]",
	Short: "Extract claim fields from one OCR'd document",
	Long: `Extract reads the OCR text of one claim document and:
- Ranks text chunks by relevance to the claim fields
- Matches labeled, fallback and loose patterns per field
- Normalizes dates and amounts
- Validates the record and reports a score and issues

Plain text, hOCR and HTML inputs are accepted. With no argument, or "-",
the text is read from stdin.

Example:
  claimlens extract claim.txt
  claimlens extract scan.hocr --json report.json --md report.md
  claimlens extract s3://claims/raw/0042.pdf --llm
  cat claim.txt | claimlens extract -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&outJSON, "json", "-", `output JSON path ("-" for stdout, "" to skip)`)
	extractCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	extractCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	addPipelineFlags(extractCmd.Flags())
}

// addPipelineFlags registers the flags shared by every command that builds
// a pipeline.
func addPipelineFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&noCache, "no-cache", false, "disable the report cache")
	fs.BoolVar(&noSummary, "no-summary", false, "skip the local extractive summary")
	fs.StringVar(&ranker, "ranker", "tfidf", "chunk ranker (tfidf, none)")
	fs.BoolVar(&llmEnabled, "llm", false, "enable hosted-model extraction")
	fs.StringVar(&llmProvider, "llm-provider", "openai", "hosted-model provider (openai, anthropic, ollama)")
	fs.StringVar(&llmModel, "llm-model", "gpt-4o-mini", "hosted-model name")
}

// commandConfig loads the merged configuration and applies the flags the
// user set explicitly.
func commandConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	applyPipelineFlags(cmd.Flags(), cfg)
	cfg.Output.Verbose = verbose
	return cfg, nil
}

func applyPipelineFlags(fs *pflag.FlagSet, cfg *model.Config) {
	if fs.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if fs.Changed("no-summary") {
		cfg.Summary.Enabled = !noSummary
	}
	if fs.Changed("ranker") {
		cfg.Extract.Ranker = ranker
	}
	if fs.Changed("llm") || fs.Changed("llm-provider") {
		cfg.LLM.Provider = ""
		if llmEnabled || fs.Changed("llm-provider") {
			cfg.LLM.Provider = llmProvider
		}
	}
	if fs.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	ref := source.StdinRef
	if len(args) == 1 {
		ref = args[0]
	}

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	report, err := p.ProcessRef(ctx, ref)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cmd.OutOrStdout())
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	if verbose || outJSON != "-" {
		pipeline.NewRenderer(os.Stderr).RenderSummary(report)
	}
	return nil
}
