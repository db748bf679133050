package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
)

const (
	customersCollection = "customers"
	ordersCollection    = "orders"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
	ErrDuplicateSession = errors.New("order for this payment session already exists")
	ErrOrderNotFound    = errors.New("order not found")
)

// CustomerRepository is keyed by the external identity id.
type CustomerRepository interface {
	GetByClerkID(ctx context.Context, clerkID string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByCustomer(ctx context.Context, clerkID string) ([]*domain.Order, error)
	GetUnpublished(ctx context.Context, limit int) ([]*domain.Order, error)
	MarkPublished(ctx context.Context, orderID string, at time.Time) error
}
