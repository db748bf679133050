package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/fjod/go_cart/checkout-api/internal/repository"
)

type OrderHistoryService struct {
	orders repository.OrderRepository
}

func NewOrderHistoryService(orders repository.OrderRepository) *OrderHistoryService {
	return &OrderHistoryService{orders: orders}
}

// ListOrders returns the customer's orders newest first, never nil.
func (s *OrderHistoryService) ListOrders(ctx context.Context, clerkID string) ([]*domain.Order, error) {
	if clerkID == "" {
		return nil, ErrMissingInput
	}

	orders, err := s.orders.ListByCustomer(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}
