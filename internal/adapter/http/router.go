package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gosplit/internal/adapter/http/handler"
	"github.com/iho/gosplit/internal/adapter/http/middleware"
	"github.com/iho/gosplit/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UserHandler       *handler.UserHandler
	EventHandler      *handler.EventHandler
	ExpenseHandler    *handler.ExpenseHandler
	SettlementHandler *handler.SettlementHandler
	HealthHandler     *handler.HealthHandler
	Logger            zerolog.Logger
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	RateLimiter       *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Liveness)
		r.Get("/ready", cfg.HealthHandler.Readiness)
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotency.Wrap)
		}

		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.UserHandler.Register)
			r.Get("/", cfg.UserHandler.List)
			r.Get("/lookup", cfg.UserHandler.Lookup)
			r.Get("/{id}", cfg.UserHandler.Get)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", cfg.EventHandler.Create)
			r.Get("/", cfg.EventHandler.List)
			r.Get("/{id}", cfg.EventHandler.Get)
			r.Delete("/{id}", cfg.EventHandler.Delete)

			r.Get("/{id}/balances", cfg.EventHandler.Balances)
			r.Get("/{id}/consistency", cfg.EventHandler.Consistency)
			r.Post("/{id}/finalize", cfg.SettlementHandler.Finalize)

			r.Route("/{id}/expenses", func(r chi.Router) {
				r.Post("/", cfg.ExpenseHandler.Create)
				r.Put("/{index}", cfg.ExpenseHandler.Update)
				r.Delete("/{index}", cfg.ExpenseHandler.Delete)
			})
		})
	})

	return r
}
