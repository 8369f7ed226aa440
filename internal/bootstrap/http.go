package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pulse-camp/portal-api/config"
	httpx "github.com/pulse-camp/portal-api/internal/http"
)

// HTTPServerConfig groups dependencies for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Auth     *AuthStack
	Services *ServiceContainer
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Logger   *slog.Logger
}

// StartHTTPServer builds the router and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Manager:        cfg.Auth.Manager,
		Profiles:       cfg.Services.Profiles,
		Courses:        cfg.Services.Courses,
		Assignments:    cfg.Services.Assignments,
		Groups:         cfg.Services.Groups,
		Notes:          cfg.Services.Notes,
		Grades:         cfg.Services.Grades,
		Schedule:       cfg.Services.Schedule,
		Sessions:       cfg.Services.Sessions,
		Quizzes:        cfg.Services.Quizzes,
		Notifications:  cfg.Services.Notifications,
		Hub:            cfg.Services.Hub,
		Files:          cfg.Services.Files,
		SSO:            cfg.Auth.SSO,
		Issuer:         cfg.Auth.Issuer,
		RoleMapper:     cfg.Auth.RoleMapper,
		Directory:      cfg.Services.Profiles,
		Pool:           cfg.Pool,
		Redis:          cfg.Redis,
		AllowedOrigins: cfg.Config.HTTP.AllowedOrigins,
		Logger:         logger,
	})

	return startServer(logger, handler, cfg.Config.HTTP.Addr)
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, grace time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()

	logger.Info("shutting down HTTP server", "grace", grace)
	return server.Shutdown(shutdownCtx)
}
