package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulse-camp/portal-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting portal service",
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"auth_mode", cfg.Auth.Mode,
		"sso_enabled", cfg.Auth.SSO.Enabled)

	pool, err := bootstrap.ConnectPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	services, err := bootstrap.BuildServices(ctx, bootstrap.ServiceDeps{
		Config: &cfg,
		Pool:   pool,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	auth, err := bootstrap.BuildAuthStack(ctx, bootstrap.AuthDeps{
		Config:   &cfg,
		Redis:    redisClient,
		Profiles: services.Profiles,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	// Background loops: realtime fan-out and provider auth-event handling.
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go services.Hub.Run(runCtx)
	go auth.Manager.Run(runCtx)

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Auth:     auth,
		Services: services,
		Pool:     pool,
		Redis:    redisClient,
		Logger:   logger,
	})

	<-runCtx.Done()
	grace := time.Duration(cfg.HTTP.ShutdownGraceSeconds) * time.Second
	return bootstrap.ShutdownHTTPServer(context.Background(), server, grace, logger)
}
