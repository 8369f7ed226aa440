package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Logger *slog.Logger
}

// Live always reports ok while the process is up.
func (h *HealthHandlers) Live(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Ready pings the database and the session cache.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok", "redis": "ok"}
	healthy := true
	if err := h.Pool.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
		h.Logger.Warn("readiness check failed", "checks", checks)
	}
	WriteJSON(w, code, map[string]any{"status": checks})
}
