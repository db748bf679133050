package service

import (
	"fmt"
	"strings"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
)

func Validate(req *domain.CheckoutRequest) error {
	if req == nil || len(req.CartItems) == 0 || req.Customer == nil {
		return ErrMissingInput
	}
	if strings.TrimSpace(req.Customer.ClerkID) == "" {
		return ErrMissingInput
	}

	for i, ci := range req.CartItems {
		if ci.Item == nil || ci.Item.ID == "" {
			return fmt.Errorf("%w: item %d has no product", ErrInvalidCart, i)
		}
		if ci.Item.Price == nil {
			return fmt.Errorf("%w: item %d has no price", ErrInvalidCart, i)
		}
		if ci.Quantity < 1 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrInvalidCart, i, ci.Quantity)
		}
	}

	if _, err := req.CheckedTotal(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCart, err)
	}
	return nil
}
