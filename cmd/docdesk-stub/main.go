package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/docdesk/internal/api/http"
	"github.com/spec-kit/docdesk/internal/config"
	"github.com/spec-kit/docdesk/internal/observability"
	"github.com/spec-kit/docdesk/internal/persistence"
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

	var redis *persistence.Redis
	if cfg.Store.Driver == config.StoreDriverRedis {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
	}

	backend, err := httptransport.NewBackend(ctx, *cfg, logger, redis)
	if err != nil {
		logger.Fatal("failed to build backend", zap.Error(err))
	}

	go func() {
		logger.Info("fixture backend listening", zap.String("addr", cfg.Stub.Addr()))
		if err := backend.App.Listen(cfg.Stub.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = backend.App.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
