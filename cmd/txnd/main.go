package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pennywise-app/pennywise/internal/app"
	"github.com/pennywise-app/pennywise/internal/observability"
	"github.com/pennywise-app/pennywise/internal/platform/cache"
	"github.com/pennywise-app/pennywise/internal/transactions"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("service", "txnd"))

	store := transactions.OpenStore(ctx, cfg, logger)
	defer store.Close(context.Background())

	metrics := observability.NewMetrics("txnd")
	metrics.SetStoreMode(string(store.Mode()))

	var summaryCache *transactions.Cache
	if redisClient, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unreachable, summaries will not be cached", slog.Any("error", err))
	} else {
		summaryCache = transactions.NewCache(redisClient, cfg.SummaryCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	service := transactions.NewService(store, summaryCache, logger)
	handler := transactions.NewHandler(logger, service, []byte(cfg.JWTSecret))

	router := app.NewServiceRouter(app.ServiceRouterParams{
		Middleware: app.MiddlewareStack(app.MiddlewareConfig{Logger: logger, Config: cfg, Metrics: metrics}),
		Metrics:    metrics,
		StoreMode:  string(store.Mode()),
		Mount:      handler.MountRoutes,
	})

	server := &http.Server{
		Addr:         cfg.TxnServiceAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.TxnServiceAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
