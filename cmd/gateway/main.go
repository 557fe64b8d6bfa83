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
	"github.com/pennywise-app/pennywise/internal/gateway"
	"github.com/pennywise-app/pennywise/internal/observability"
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

	logger := app.NewLogger(cfg).With(slog.String("service", "gateway"))
	metrics := observability.NewMetrics("gateway")

	userProxy, err := gateway.NewServiceProxy("userd", cfg.UserServiceURL, logger)
	if err != nil {
		logger.Error("build user proxy", slog.Any("error", err))
		os.Exit(1)
	}
	txnProxy, err := gateway.NewServiceProxy("txnd", cfg.TxnServiceURL, logger)
	if err != nil {
		logger.Error("build transaction proxy", slog.Any("error", err))
		os.Exit(1)
	}

	health := gateway.NewHealthChecker(map[string]string{
		"userd": cfg.UserServiceURL,
		"txnd":  cfg.TxnServiceURL,
	})

	router := gateway.NewRouter(gateway.RouterParams{
		Middleware: app.MiddlewareStack(app.MiddlewareConfig{Logger: logger, Config: cfg, Metrics: metrics}),
		UserProxy:  userProxy,
		TxnProxy:   txnProxy,
		Health:     health,
		Metrics:    metrics,
	})

	server := &http.Server{
		Addr:         cfg.GatewayAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.GatewayAddr))
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
