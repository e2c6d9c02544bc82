package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tally/internal/backend"
	"tally/internal/config"
	"tally/internal/events"
	applog "tally/internal/log"
	"tally/internal/mirror"
	"tally/internal/mirror/google"
	mirrormem "tally/internal/mirror/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "mirror-worker"})
	logger.Info("Starting mirror-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("Mirror worker requires an AMQP broker, set AMQP_URL")
		os.Exit(1)
	}

	result, err := backend.Open(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to open store backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mirror to Google Sheets when configured, otherwise fall back to the
	// in-memory mirror so the queue still drains during local development.
	var (
		appender mirror.RowAppender
		deleter  mirror.RowDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mem := mirrormem.New()
		appender, deleter = mem, mem
		logger.Info("Google Sheets disabled - using in-memory mirror")
	}

	eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.SyncQueue, cfg.AlertQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer eventsClient.Close()

	worker := mirror.NewWorker(result.Store, appender, deleter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return eventsClient.ConsumeTransactionChanges(gctx, func(msg *events.TransactionChangedMessage) error {
			return worker.Handle(gctx, msg)
		})
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Mirror worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Mirror-worker shutdown complete")
}
