package httpx

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/pulse-camp/portal-api/internal/adapters/realtime"
)

// WSHandlers upgrades authenticated requests onto the realtime hub.
type WSHandlers struct {
	Hub            *realtime.Hub
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Connect upgrades the request to a websocket and registers the client for
// the signed-in user's events. Authentication is enforced by the router.
func (h *WSHandlers) Connect(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	realtime.NewClient(h.Hub, conn, currentUserID(r.Context())).Register()
}

// checkOrigin accepts same-host requests plus any configured origin.
func (h *WSHandlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
