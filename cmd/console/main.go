package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/duty-attendance/internal/api/http"
	"github.com/spec-kit/duty-attendance/internal/app"
	"github.com/spec-kit/duty-attendance/internal/config"
	"github.com/spec-kit/duty-attendance/internal/observability"
	"github.com/spec-kit/duty-attendance/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		logger.Fatal("failed to wire app", zap.Error(err))
	}
	defer a.Close()

	// Guarded routes answer 503 until the stored session has been checked.
	go a.Sessions.Initialize(ctx)
	worker.StartSessionKeeper(ctx, a.Sessions, cfg.Session.KeepAliveInterval(), cfg.Session.RefreshWindow(), logger)

	server := httptransport.NewServer(a)

	go func() {
		if err := server.Listen(cfg.Console.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("console listening", zap.String("addr", cfg.Console.Addr()), zap.String("api", cfg.API.BaseURL))

	waitForShutdown(logger)

	cancel()
	_ = server.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
