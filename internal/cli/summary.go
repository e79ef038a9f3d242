package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/claimlens/internal/source"
	"github.com/ppiankov/claimlens/internal/summarize"
)

var summarySentences int

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [file|-]",
	Short: "Print a short extractive summary of a document",
	Long: `Summary picks the highest-scoring sentences of a document by word
frequency and prints them in their original order. No fields are extracted.

Example:
  claimlens summary claim.txt
  claimlens summary claim.txt -n 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntVarP(&summarySentences, "sentences", "n", 0, "number of sentences (default from config)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ref := source.StdinRef
	if len(args) == 1 {
		ref = args[0]
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	n := cfg.Summary.Sentences
	if summarySentences > 0 {
		n = summarySentences
	}

	files := source.NewFileSource(cfg.Source.MaxBytes)
	resolver := &source.Resolver{Files: files, Stdin: cmd.InOrStdin()}
	doc, err := resolver.Read(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), summarize.Summarize(doc.Text, n))
	return nil
}
