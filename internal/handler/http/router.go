package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suleman231/provisimarket-hub/pkg/health"
	"github.com/suleman231/provisimarket-hub/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the HTTP layer.
const ServiceName = "provisimarket-hub"

// RouterConfig holds the edge settings of the API.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	PprofCIDRs     []string
	RequestTimeout time.Duration
	// Done stops background sweepers started by middleware.
	Done <-chan struct{}
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(h *Handler, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Done, logger))

		r.With(middleware.CacheControl(3600)).Get("/categories", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Get("/catalog", h.ListCatalog)
			r.Post("/ratings", h.RateProduct)

			r.Route("/stores", func(r chi.Router) {
				r.Get("/", h.SearchStores)
				r.Get("/{storeId}", h.GetStore)
				r.Patch("/{storeId}", h.UpdateStore)
				r.Patch("/{storeId}/products/{productId}", h.UpdateProduct)
				r.Post("/{storeId}/products/{productId}/ratings", h.RateStoreProduct)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Get("/export", h.ExportCart)
				r.Post("/lines", h.AddCartLine)
				r.Delete("/lines/{index}", h.RemoveCartLine)
				r.Delete("/products/{productId}", h.RemoveCartProduct)
			})

			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)

			r.Route("/merchant", func(r chi.Router) {
				r.Get("/store", h.GetMerchantStore)
				r.Post("/products", h.AddProduct)
				r.Post("/products/describe", h.DescribeProduct)
				r.Post("/products/{productId}/gallery", h.AddGalleryImage)
			})

			r.Post("/uploads", h.BeginUpload)
			r.Put("/uploads/{token}", h.CompleteUpload)

			r.Get("/assistant/transcript", h.GetTranscript)
			r.Post("/assistant/messages", h.Ask)
		})
	})

	return r
}
