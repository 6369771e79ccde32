package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frenow/rocketshoes-cart/pkg/health"
	"github.com/frenow/rocketshoes-cart/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "cart-store"

// NewRouter creates a chi router with all cart routes registered.
func NewRouter(store CartStore, healthHandler *health.Handler, cors middleware.CORSConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cors))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	cartHandler := NewCartHandler(store, logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", cartHandler.GetCart)
		r.Post("/items", cartHandler.AddProduct)
		r.Put("/items/{productId}", cartHandler.UpdateProductAmount)
		r.Delete("/items/{productId}", cartHandler.RemoveProduct)
	})

	return r
}
