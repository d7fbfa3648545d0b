package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	// Named dependencies reported by /api/health (database, redis)
	Health map[string]HealthChecker

	Digester Digester
	Caster   Caster
	Analyzer DivergenceAnalyzer

	// Congress digested when a request names none
	DefaultCongress int

	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer

	CORSOrigins []string
	Development bool
}

// RouterResult holds the router and resources that need cleanup
type RouterResult struct {
	Router       *chi.Mux
	RateLimiters *RateLimiters
}

// NewRouter creates and configures the HTTP router.
// Caller must call result.RateLimiters.Stop() on shutdown.
func NewRouter(cfg *RouterConfig) *RouterResult {
	r := chi.NewRouter()

	rateLimiters := NewRateLimiters()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.CORSOrigins, cfg.Development))
	r.Use(rateLimiters.Global.Middleware)

	r.Get("/api/health", NewHealthHandler(cfg.Health))

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	votes := NewVoteHandler(cfg.Digester, cfg.DefaultCongress)
	r.Route("/api/votes", func(r chi.Router) {
		r.With(DigestGuardMiddleware(rateLimiters.Digest)).
			Get("/groups", votes.Groups)
		r.Get("/{id}/subject", votes.Subject)
	})

	pollHandler := NewPollHandler(cfg.Caster, cfg.Analyzer)
	r.With(rateLimiters.Cast.Middleware).
		Post("/api/polls/{pollID}/votes", pollHandler.Cast)

	r.Get("/api/reps", pollHandler.Board)
	r.Route("/api/reps/{voterID}", func(r chi.Router) {
		r.Get("/divergence/{pollID}", pollHandler.Divergence)
		r.Get("/rollcall", pollHandler.RollCall)
	})

	return &RouterResult{
		Router:       r,
		RateLimiters: rateLimiters,
	}
}
