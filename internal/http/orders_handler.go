package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/fjod/go_cart/checkout-api/internal/service"
	"github.com/fjod/go_cart/checkout-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderLister interface {
	ListOrders(ctx context.Context, clerkID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders OrderLister
	logger *zap.Logger
}

func NewOrdersHandler(orders OrderLister, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		logger: logger,
	}
}

// GET /api/orders/customers/{clerkId}
func (h *OrdersHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	clerkID := chi.URLParam(r, "clerkId")
	orders, err := h.orders.ListOrders(r.Context(), clerkID)
	if err != nil {
		if errors.Is(err, service.ErrMissingInput) {
			_ = respondError(w, http.StatusBadRequest, "clerkId is required")
			return
		}
		log.Error("list orders failed", zap.String("clerk_id", clerkID), zap.Error(err))
		_ = respondError(w, http.StatusInternalServerError, msgInternalServer)
		return
	}

	if err := respondJSON(w, http.StatusOK, orders); err != nil {
		log.Warn("failed to write orders response", zap.Error(err))
	}
}
