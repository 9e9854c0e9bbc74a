package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"placement/internal/config"
	"placement/internal/database"
	"placement/internal/notify"
	"placement/internal/observability"
	"placement/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if cfg.RedisURL == "" || cfg.MailRelayURL == "" {
		log.Fatal("REDIS_URL and MAIL_RELAY_URL are required for the worker")
	}
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.NewPostgres(database.PostgresConfig{
		Driver:          cfg.DBDriver,
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.WorkerConcurrency + 2,
		MaxIdleConns:    cfg.WorkerConcurrency,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	worker := notify.NewWorker(
		postgres.NewUserRepository(db),
		postgres.NewJobRepository(db),
		notify.NewRelayClient(cfg.MailRelayURL, cfg.MailRelayKey, cfg.MailFrom),
		logger,
	)
	mux := asynq.NewServeMux()
	worker.Register(mux)
	server := notify.NewServer(redisOpt, cfg.WorkerConcurrency, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("notification worker started", zap.Int("concurrency", cfg.WorkerConcurrency))
		return server.Start(mux)
	})
	g.Go(func() error {
		<-gctx.Done()
		server.Shutdown()
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
	logger.Info("notification worker stopped")
}
