package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/cache"
	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/fjod/go_cart/checkout-api/internal/payment"
	"github.com/fjod/go_cart/checkout-api/internal/repository"
	"go.uber.org/zap"
)

// MockCustomerRepository behaves like the customers collection with its unique clerkId index.
type MockCustomerRepository struct {
	m         sync.Mutex
	customers map[string]*domain.Customer
	GetErr    error
	CreateErr error
	Creates   int
	Lookups   int

	// When Gate is set, lookups signal Entered and wait for Gate to close.
	Gate    chan struct{}
	Entered chan struct{}
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{customers: make(map[string]*domain.Customer)}
}

func (m *MockCustomerRepository) GetByClerkID(ctx context.Context, clerkID string) (*domain.Customer, error) {
	if m.Gate != nil {
		select {
		case m.Entered <- struct{}{}:
		default:
		}
		<-m.Gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.Lookups++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.customers[clerkID]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.customers[customer.ClerkID]; ok {
		return repository.ErrCustomerExists
	}
	m.Creates++
	customer.ID = fmt.Sprintf("cust-%d", m.Creates)
	copied := *customer
	m.customers[customer.ClerkID] = &copied
	return nil
}

func (m *MockCustomerRepository) Count() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.customers)
}

func (m *MockCustomerRepository) Get(clerkID string) *domain.Customer {
	m.m.Lock()
	defer m.m.Unlock()
	return m.customers[clerkID]
}

// MockOrderRepository enforces the unique stripeSessionId index.
type MockOrderRepository struct {
	m         sync.Mutex
	Orders    []*domain.Order
	CreateErr error
	ListErr   error
	Attempts  int
}

func (m *MockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.Attempts++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, o := range m.Orders {
		if o.StripeSessionID == order.StripeSessionID {
			return repository.ErrDuplicateSession
		}
	}
	order.ID = fmt.Sprintf("order-%d", len(m.Orders)+1)
	m.Orders = append(m.Orders, order)
	return nil
}

func (m *MockOrderRepository) ListByCustomer(_ context.Context, clerkID string) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*domain.Order
	for i := len(m.Orders) - 1; i >= 0; i-- {
		if m.Orders[i].CustomerClerkID == clerkID {
			out = append(out, m.Orders[i])
		}
	}
	return out, nil
}

func (m *MockOrderRepository) GetUnpublished(context.Context, int) ([]*domain.Order, error) {
	return nil, nil
}

func (m *MockOrderRepository) MarkPublished(context.Context, string, time.Time) error {
	return nil
}

// MockGateway mimics the processor: the same idempotency key yields the same session.
type MockGateway struct {
	m        sync.Mutex
	Requests []*payment.SessionRequest
	Err      error
	byKey    map[string]*payment.Session
}

func (m *MockGateway) CreateSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.byKey == nil {
		m.byKey = make(map[string]*payment.Session)
	}
	if s, ok := m.byKey[req.IdempotencyKey]; ok {
		return s, nil
	}

	id := fmt.Sprintf("cs_test_%d", len(m.byKey)+1)
	descriptor, _ := json.Marshal(map[string]string{
		"id":     id,
		"object": "checkout.session",
		"url":    "https://checkout.stripe.com/c/pay/" + id,
	})
	s := &payment.Session{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id, Descriptor: descriptor}
	m.byKey[req.IdempotencyKey] = s
	return s, nil
}

func (m *MockGateway) Calls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.Requests)
}

type MockSessionCache struct {
	m        sync.Mutex
	sessions map[string]*payment.Session
	GetErr   error
	SetErr   error
}

func (m *MockSessionCache) Get(_ context.Context, key string) (*payment.Session, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s, ok := m.sessions[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return s, nil
}

func (m *MockSessionCache) Set(_ context.Context, key string, s *payment.Session) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.sessions == nil {
		m.sessions = make(map[string]*payment.Session)
	}
	m.sessions[key] = s
	return nil
}

type testDeps struct {
	customers *MockCustomerRepository
	orders    *MockOrderRepository
	gateway   *MockGateway
	sessions  *MockSessionCache
}

func newTestCheckoutService() (*CheckoutService, *testDeps) {
	deps := &testDeps{
		customers: NewMockCustomerRepository(),
		orders:    &MockOrderRepository{},
		gateway:   &MockGateway{},
		sessions:  &MockSessionCache{},
	}
	svc := NewCheckoutService(deps.customers, deps.orders, deps.gateway, deps.sessions, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, deps
}
