package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/config"
	"github.com/malexanderboyd/godr4ft/internal/director"
	"github.com/malexanderboyd/godr4ft/internal/scoring"
)

func serveCmd(configPath *string) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the draft server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.SetPort(port)
			}
			return serve(cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "the port the server will open a socket server on, overrides the config")
	return cmd
}

func serve(cfg *config.Config) error {
	logger := internal.InitLogger(cfg.Server.Debug)
	defer func() { _ = logger.Sync() }()

	pool, err := cards.LoadPoolFile(cfg.Cards.Path)
	if err != nil {
		return fmt.Errorf("load card table: %w", err)
	}
	logger.Infow("card table loaded", "path", cfg.Cards.Path, "cards", pool.Len())

	dcfg := director.Config{
		Pool:         pool,
		Defaults:     cfg.Session,
		StatusKey:    cfg.Server.StatusKey,
		SnapshotPath: cfg.Server.SnapshotPath,
	}
	if cfg.Scoring.URL != "" {
		client, err := scoring.NewClient(scoring.Options{
			BaseURL: cfg.Scoring.URL,
			Rate:    rate.Limit(cfg.Scoring.Rate),
			Timeout: cfg.ScoringTimeout(),
		})
		if err != nil {
			return fmt.Errorf("create scoring client: %w", err)
		}
		dcfg.Rater = client
	}

	coordinator, err := director.NewCoordinator(dcfg)
	if err != nil {
		return fmt.Errorf("create coordinator: %w", err)
	}
	go coordinator.Listen()

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           coordinator.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("draft server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	var serveErr error
	select {
	case sig := <-sigs:
		logger.Infow("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		logger.Errorw("server failed", "error", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("http shutdown", "error", err)
	}
	if err := coordinator.Shutdown(ctx); err != nil {
		logger.Errorw("coordinator shutdown", "error", err)
	}
	return serveErr
}
