package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"tally/internal/backend"
	"tally/internal/budget"
	"tally/internal/category"
	"tally/internal/config"
	"tally/internal/events"
	applog "tally/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "tally-worker"})
	logger.Info("Starting tally-worker")

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

	var sink budget.AlertSink
	if cfg.AMQPURL != "" {
		eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.SyncQueue, cfg.AlertQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, alerts will only be logged", "error", err)
		} else {
			defer eventsClient.Close()
			sink = events.NewAlertPublisher(eventsClient)
			logger.Info("AMQP client initialized", "alert_queue", cfg.AlertQueue)
		}
	} else {
		logger.Info("AMQP disabled - alerts will only be logged")
	}

	evaluator := budget.NewEvaluator(result.Store, category.NewRegistry(), sink, nil)
	budgetCfg := budget.Config{
		Monthly:               cfg.BudgetMonthly,
		AlertThresholdPercent: cfg.BudgetThreshold,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	check := func() {
		statuses, err := evaluator.Evaluate(ctx, budgetCfg)
		if err != nil {
			logger.Error("Budget check failed", "error", err)
			return
		}
		for _, st := range statuses {
			logger.Info("Budget scope evaluated",
				"scope", st.Scope,
				"status", st.Status,
				"spent", st.Spent,
				"percent_used", st.PercentUsed)
		}
	}

	// Run one check on startup, then on the configured schedule.
	check()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.BudgetCheckSchedule, check); err != nil {
		logger.Error("Invalid budget check schedule", "error", err, "schedule", cfg.BudgetCheckSchedule)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Budget check scheduled", "schedule", cfg.BudgetCheckSchedule, "monthly", cfg.BudgetMonthly)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	stopCtx := scheduler.Stop()
	cancel()

	select {
	case <-stopCtx.Done():
		logger.Info("Tally-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
