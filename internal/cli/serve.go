package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction API over HTTP",
	Long: `Serve exposes claim extraction over HTTP:
  GET  /health       liveness and hosted-model status
  POST /v1/extract   JSON {"text": "...", "source": "..."} or a text/plain body
  POST /v1/validate  a claim record as JSON

Example:
  claimlens serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	addPipelineFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	handler := server.NewHandler(p, logger)
	router := server.NewRouter(handler, cfg.Server.MaxBodyBytes, logger)

	fmt.Fprintf(os.Stderr, "⚙️  Listening on %s (model enabled: %t)\n", cfg.Server.Addr, p.ModelEnabled())
	return server.New(cfg.Server.Addr, router, logger).Run(ctx, nil)
}
