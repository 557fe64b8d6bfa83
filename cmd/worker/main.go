package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pennywise-app/pennywise/internal/app"
	jobmetrics "github.com/pennywise-app/pennywise/internal/jobs"
	"github.com/pennywise-app/pennywise/internal/platform/cache"
	"github.com/pennywise-app/pennywise/internal/transactions"
	"github.com/pennywise-app/pennywise/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("service", "worker"))

	store := transactions.OpenStore(ctx, cfg, logger)
	defer store.Close(context.Background())
	if store.Mode() == transactions.ModeFallback {
		logger.Warn("worker running against in-memory store, materialized rows are not shared")
	}

	var lock *jobs.RunLock
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("run lock disabled", slog.Any("error", err))
	} else {
		defer redisClient.Close()
		lock = jobs.NewRunLock(redisClient, 10*time.Minute)
	}

	service := transactions.NewService(store, nil, logger)
	metrics := jobmetrics.NewMetrics(nil)
	recurringJob := jobs.NewRecurringMaterializeJob(service, logger, metrics, lock)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRecurringMaterialize, Handler: recurringJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@daily", Task: jobs.NewRecurringMaterializeTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
