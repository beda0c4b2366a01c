package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ruturajs19/chat-app/internal/config"
	cacheAdapter "github.com/ruturajs19/chat-app/internal/infrastructure/cache/adapter"
	"github.com/ruturajs19/chat-app/internal/infrastructure/logger"
	queueAdapter "github.com/ruturajs19/chat-app/internal/infrastructure/queue/adapter"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/task"
)

// The worker consumes chat notifications published by the API.
func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	log = log.With().Str("service", cfg.ServiceName+"-worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := cacheAdapter.NewRedisAdapter(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer cache.Close()

	srv, err := queueAdapter.NewAsynqServer(queueAdapter.ServerConfig{
		RedisURL:    cfg.RedisURL,
		Concurrency: cfg.WorkerConcurrency,
		Queues:      cfg.WorkerQueues,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue server")
	}
	task.RegisterMessageDigestTask(srv, cache, log)

	log.Info().Str("queues", cfg.WorkerQueues).Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker stopped with error")
		return
	}
	log.Info().Msg("worker exited cleanly")
}
