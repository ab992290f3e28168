package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"patientcall/internal/cache"
	"patientcall/internal/config"
	"patientcall/internal/devserver"
	"patientcall/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	var mirror *redis.Client
	if cfg.DevServer.RedisAddr != "" {
		mirror, err = cache.NewRedisClient(ctx, cfg.DevServer.RedisAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
	}

	srv, err := devserver.NewServer(cfg.Environment, cfg.DevServer, logger, mirror)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build dev server")
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("dev server failed")
		}
	}()

	waitCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-waitCtx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if mirror != nil {
		if err := mirror.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("dev server exited cleanly")
}
