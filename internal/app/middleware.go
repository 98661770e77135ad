package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger *slog.Logger
	Config *Config
}

// MiddlewareStack installs the standard middleware chain. The request
// deadline is not applied here; the router adds it per route group so the
// highlight event stream can stay open.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	}
}
