package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/A3Manav/jewellery-wishlist-service/pkg/health"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/middleware"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	LoginRPS       int
	LoginBurst     int
}

// NewRouter builds the service's chi router.
func NewRouter(h *Handler, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS)

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(RequireSessionID)
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Post("/init", h.InitializeSession)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.LoginRPS, cfg.LoginBurst, logger))
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.GetWishlist)
			r.Post("/materialize", h.Materialize)
			r.Post("/items", h.AddItem)
			r.Get("/items/{productID}", h.CheckItem)
			r.Delete("/items/{productID}", h.RemoveItem)
			// Retired route preserved for old storefront builds.
			r.Post("/remove/{productID}", h.RemoveItemLegacy)
		})
	})

	return r
}
