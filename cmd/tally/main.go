package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tally/internal/backend"
	"tally/internal/budget"
	"tally/internal/category"
	"tally/internal/config"
	"tally/internal/events"
	apphttp "tally/internal/http"
	applog "tally/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "tally"})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
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

	// AMQP is optional: without a broker the API still works, only change
	// events and alert publishing are skipped.
	var (
		eventsClient *events.Client
		publisher    apphttp.Publisher
	)
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.SyncQueue, cfg.AlertQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer eventsClient.Close()
			publisher = eventsClient
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange,
				"sync_queue", cfg.SyncQueue,
				"alert_queue", cfg.AlertQueue)
		}
	} else {
		logger.Info("AMQP disabled - change events will not be published")
	}

	registry := category.NewRegistry()

	history := budget.NewHistory(100)
	sink := budget.MultiSink{history}
	if eventsClient != nil {
		sink = append(sink, events.NewAlertPublisher(eventsClient))
	}
	evaluator := budget.NewEvaluator(result.Store, registry, sink, nil)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Store:     result.Store,
		Notifier:  result.Notifier,
		Registry:  registry,
		Evaluator: evaluator,
		Budget: budget.Config{
			Monthly:               cfg.BudgetMonthly,
			AlertThresholdPercent: cfg.BudgetThreshold,
		},
		Alerts:    history,
		Publisher: publisher,
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting tally server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
