package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/binkread/internal/api"
	"github.com/dgallion1/binkread/internal/config"
	"github.com/dgallion1/binkread/internal/pipeline"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			log := newLogger(os.Stdout, cfg)
			if err := cfg.Validate(); err != nil {
				log.Error("invalid configuration", "error", err)
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, a.summarizer, a.metrics, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, a.summarizer, a.stats, a.metrics.Handler(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
	}()

	log.Info("starting binkread",
		"port", cfg.Port,
		"provider", cfg.SummarizerProvider,
		"model", cfg.SummarizerModel,
		"tokenizer", cfg.Tokenizer,
		"cache", cfg.SummaryDBPath != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		cancel()
		<-done
		return fmt.Errorf("listen: %w", err)
	}
	<-done
	return nil
}
