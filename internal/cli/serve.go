package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rolefit/internal/common"
	"rolefit/internal/observability"
	"rolefit/internal/server"
	"rolefit/internal/taxonomy"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing the analysis engine.

Available endpoints:
- POST /analyze: Score resume text (JSON)
- POST /analyze/upload: Score an uploaded .txt, .md or .pdf
- GET /branches, /branches/{branch}/roles, /branches/{branch}/roles/{role}/skills
- GET /history: Past analyses of the Basic-authenticated account
- POST /signup: Create an account
- GET /health, /stats and the Prometheus metrics endpoint

TLS is configured under server.tls (disabled, server or mutual).`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger := getLoggerFromContext(cmd.Context())

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	onReload := func(_ *taxonomy.Taxonomy, err error) {
		om.Metrics().RecordTaxonomyReload(context.Background(), err)
	}

	svc, err := common.NewServices(cfg, logger, onReload)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to release services", "error", err)
		}
	}()

	srv := server.NewServer(cfg, svc, om, Version, logger)
	srv.SetBanner(cmd.OutOrStdout())
	return srv.Start(cmd.Context())
}
