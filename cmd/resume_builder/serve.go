package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing rendering, import and export, and stored drafts
with live preview streams. Drafts are kept in PostgreSQL when DATABASE_URL is
set and in the drafts directory otherwise.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, RESUME_BUILDER_PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close draft store", zap.Error(err))
		}
	}()

	srv := server.New(server.Config{
		Addr:      cfg.Addr(),
		RateLimit: ratelimit.LoadConfig(cfg.RatePerMinute),
		MaxSteps:  cfg.MaxSteps,
		MaxDepth:  cfg.MaxDepth,
	}, st, logger)

	return srv.Start(ctx)
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.DraftsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft store: %w", err)
	}
	if cfg.DatabaseURL != "" {
		logger.Info("using PostgreSQL draft store")
	} else {
		logger.Info("using file draft store", zap.String("dir", cfg.DraftsDir))
	}
	return st, nil
}
