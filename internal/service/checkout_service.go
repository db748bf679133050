package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/cache"
	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/fjod/go_cart/checkout-api/internal/payment"
	"github.com/fjod/go_cart/checkout-api/internal/repository"
	"github.com/fjod/go_cart/checkout-api/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const customerUpsertTimeout = 10 * time.Second

type CheckoutService struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	payments  payment.Gateway
	sessions  cache.SessionCache
	logger    *zap.Logger
	sfg       singleflight.Group // one customer lookup/insert per identity at a time

	now    func() time.Time
	newKey func() string
}

// NewCheckoutService wires the workflow. sessions may be nil, which disables replay.
func NewCheckoutService(
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	payments payment.Gateway,
	sessions cache.SessionCache,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		customers: customers,
		orders:    orders,
		payments:  payments,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
		newKey:    uuid.NewString,
	}
}

// Checkout upserts the customer, creates the payment session and records the order,
// strictly in that order. The returned session is the processor's full descriptor.
func (s *CheckoutService) Checkout(
	ctx context.Context,
	req *domain.CheckoutRequest,
	idempotencyKey string) (*payment.Session, error) {

	log := logger.FromContext(ctx, s.logger)

	if err := Validate(req); err != nil {
		return nil, err
	}

	if cached := s.replay(ctx, log, idempotencyKey); cached != nil {
		return cached, nil
	}

	clerkID := req.Customer.ClerkID
	log = log.With(zap.String("clerk_id", clerkID))

	if err := s.ensureCustomer(ctx, req.Customer); err != nil {
		log.Error("customer upsert failed", zap.String("step", "customer_upsert"), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	stripeKey := idempotencyKey
	if stripeKey == "" {
		stripeKey = s.newKey()
	}

	session, err := s.payments.CreateSession(ctx, &payment.SessionRequest{
		LineItems:         payment.LineItemsFromCart(req.CartItems),
		ClientReferenceID: clerkID,
		CustomerName:      req.Customer.Name,
		IdempotencyKey:    stripeKey,
	})
	if err != nil {
		log.Error("payment session creation failed", zap.String("step", "payment_session"), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentSession, err)
	}
	log = log.With(zap.String("stripe_session_id", session.ID))
	log.Info("payment session created", zap.Int("line_items", len(req.CartItems)))

	order := &domain.Order{
		CustomerClerkID: clerkID,
		CustomerName:    req.Customer.Name,
		Products:        req.OrderProducts(),
		TotalAmount:     req.Total(),
		StripeSessionID: session.ID,
		CreatedAt:       s.now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if !errors.Is(err, repository.ErrDuplicateSession) {
			// The session exists at the processor with no order behind it.
			log.Error("order persistence failed, payment session orphaned",
				zap.String("step", "order_persist"),
				zap.String("idempotency_key", stripeKey),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		log.Info("order already recorded for payment session")
	} else {
		log.Info("order saved", zap.String("order_id", order.ID), zap.Stringer("total_amount", order.TotalAmount))
	}

	s.remember(ctx, log, idempotencyKey, session)
	return session, nil
}

// ensureCustomer coalesces concurrent upserts of one identity. The shared lookup is
// detached from caller cancellation and bounded by customerUpsertTimeout.
func (s *CheckoutService) ensureCustomer(ctx context.Context, info *domain.CustomerInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch := s.sfg.DoChan(info.ClerkID, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), customerUpsertTimeout)
		defer cancel()
		log := s.logger.With(zap.String("clerk_id", info.ClerkID))

		existing, err := s.customers.GetByClerkID(shared, info.ClerkID)
		if err == nil {
			log.Debug("customer already exists", zap.String("customer_id", existing.ID))
			return existing, nil
		}
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, err
		}

		customer := &domain.Customer{
			ClerkID:   info.ClerkID,
			Email:     info.Email,
			Name:      info.Name,
			CreatedAt: s.now(),
		}
		if err := s.customers.Create(shared, customer); err != nil {
			if errors.Is(err, repository.ErrCustomerExists) {
				log.Debug("customer created concurrently")
				return customer, nil
			}
			return nil, err
		}

		log.Info("customer saved", zap.String("customer_id", customer.ID))
		return customer, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CheckoutService) replay(ctx context.Context, log *zap.Logger, key string) *payment.Session {
	if key == "" || s.sessions == nil {
		return nil
	}

	cached, err := s.sessions.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("idempotency cache get failed", zap.Error(err)) // continue without replay
		}
		return nil
	}

	log.Info("replaying checkout for idempotency key",
		zap.String("idempotency_key", key),
		zap.String("stripe_session_id", cached.ID))
	return cached
}

func (s *CheckoutService) remember(ctx context.Context, log *zap.Logger, key string, session *payment.Session) {
	if key == "" || s.sessions == nil {
		return
	}
	if err := s.sessions.Set(ctx, key, session); err != nil {
		log.Warn("idempotency cache set failed", zap.Error(err))
	}
}
