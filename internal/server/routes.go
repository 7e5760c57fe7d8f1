package server

import (
	"log/slog"
	"net/http"
)

// Config contains HTTP server options.
type Config struct {
	// AllowedOrigins is the CORS allow list; "*" allows every origin.
	AllowedOrigins []string
}

// DefaultConfig returns a Config suitable for local development.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter wires the job API routes onto a method-routed ServeMux and
// wraps them in the recovery, logging, and CORS middlewares.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /jobs", h.CreateJob)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)
	mux.HandleFunc("POST /jobs/{id}/cancel", h.CancelJob)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
