package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://portal.example.edu").
	// Used for generating absolute URLs in the SSO redirect flow.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// AllowedOrigins lists origins accepted for websocket upgrades beyond
	// the request host itself.
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envDefault:"" envSeparator:";"`

	// ShutdownGraceSeconds is how long in-flight requests get to finish on
	// shutdown.
	ShutdownGraceSeconds int `env:"HTTP_SHUTDOWN_GRACE_SECONDS" envDefault:"15"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.ShutdownGraceSeconds < 1 {
		h.ShutdownGraceSeconds = 1
	}
	if h.ShutdownGraceSeconds > 120 {
		h.ShutdownGraceSeconds = 120
	}
}
