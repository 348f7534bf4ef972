// Package http wires the chi route tree and the HTTP server for the
// screening API.
package http

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/internal/infrastructure/metrics"
	"github.com/molscreen/molscreen/internal/interfaces/http/handlers"
	"github.com/molscreen/molscreen/internal/interfaces/http/middleware"
)

//go:embed index.html
var indexPage []byte

// RouterConfig aggregates the handler and middleware dependencies needed to
// construct the route tree.
type RouterConfig struct {
	ScreeningHandler *handlers.ScreeningHandler
	HealthHandler    *handlers.HealthHandler

	SessionMiddleware *middleware.SessionMiddleware

	// AllowedOrigins configures CORS.  Empty disables cross-origin access.
	AllowedOrigins []string

	Logger  logging.Logger
	Metrics *metrics.Metrics
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics.HTTP))
	}

	// Probes and scrape stay outside the session middleware.
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Group(func(app chi.Router) {
		if cfg.SessionMiddleware != nil {
			app.Use(cfg.SessionMiddleware.Handler)
		}

		app.Get("/", servePage)

		app.Route("/api/v1/screenings", func(sr chi.Router) {
			sr.Post("/text", cfg.ScreeningHandler.SubmitText)
			sr.Post("/file", cfg.ScreeningHandler.SubmitFile)
			sr.Get("/current", cfg.ScreeningHandler.Current)
			sr.Delete("/current", cfg.ScreeningHandler.Clear)
			sr.Get("/current/export", cfg.ScreeningHandler.Export)
		})
	})

	return r
}

func servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}
