package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/checkout-api/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter mounts the API. CORS wraps every other middleware, recovered panics included.
func NewRouter(
	cfg RouterConfig,
	checkout *CheckoutHandler,
	orders *OrdersHandler,
	m *metrics.ServerMetrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CORS)
	r.Use(Instrument(m, logger))
	r.Use(Recoverer(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(LimitBody(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", checkout.Checkout)
		r.Get("/orders/customers/{clerkId}", orders.ListCustomerOrders)
	})

	return r
}
