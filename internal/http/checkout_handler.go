package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/fjod/go_cart/checkout-api/internal/payment"
	"github.com/fjod/go_cart/checkout-api/internal/service"
	"github.com/fjod/go_cart/checkout-api/pkg/idempotency"
	"github.com/fjod/go_cart/checkout-api/pkg/logger"
	"github.com/fjod/go_cart/checkout-api/pkg/metrics"
	"go.uber.org/zap"
)

const (
	outcomeSuccess          = "success"
	outcomeBadRequest       = "bad_request"
	outcomePaymentError     = "payment_error"
	outcomePersistenceError = "persistence_error"
	outcomeError            = "error"
)

type Checkouter interface {
	Checkout(ctx context.Context, req *domain.CheckoutRequest, idempotencyKey string) (*payment.Session, error)
}

type CheckoutHandler struct {
	checkout Checkouter
	metrics  *metrics.ServerMetrics
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout Checkouter, m *metrics.ServerMetrics, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		metrics:  m,
		logger:   logger,
	}
}

// POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid checkout body", zap.Error(err))
		h.finish(w, log, outcomeBadRequest, http.StatusBadRequest, msgNotEnoughData)
		return
	}

	session, err := h.checkout.Checkout(r.Context(), &req, idempotency.Key(r))
	if err != nil {
		switch {
		case service.IsInputError(err):
			log.Warn("checkout rejected", zap.Error(err))
			h.finish(w, log, outcomeBadRequest, http.StatusBadRequest, msgNotEnoughData)
		case errors.Is(err, service.ErrPaymentSession):
			h.finish(w, log, outcomePaymentError, http.StatusInternalServerError, msgInternalServer)
		case errors.Is(err, service.ErrPersistence):
			h.finish(w, log, outcomePersistenceError, http.StatusInternalServerError, msgInternalServer)
		default:
			log.Error("checkout failed", zap.Error(err))
			h.finish(w, log, outcomeError, http.StatusInternalServerError, msgInternalServer)
		}
		return
	}

	h.count(outcomeSuccess)
	if len(session.Descriptor) > 0 {
		err = respondRaw(w, http.StatusOK, session.Descriptor)
	} else {
		err = respondJSON(w, http.StatusOK, session)
	}
	if err != nil {
		log.Warn("failed to write checkout response", zap.Error(err))
	}
}

func (h *CheckoutHandler) finish(w http.ResponseWriter, log *zap.Logger, outcome string, status int, message string) {
	h.count(outcome)
	if err := respondError(w, status, message); err != nil {
		log.Warn("failed to write error response", zap.Error(err))
	}
}

func (h *CheckoutHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.Checkouts.WithLabelValues(outcome).Inc()
	}
}
