package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/checkout-api/internal/payment"
)

// SessionCache remembers the payment session created for an idempotency key.
type SessionCache interface {
	Get(ctx context.Context, key string) (*payment.Session, error)
	Set(ctx context.Context, key string, session *payment.Session) error
}

var ErrCacheMiss = errors.New("cache miss")
