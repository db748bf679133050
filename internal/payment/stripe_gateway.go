package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/checkout-api/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v78"
	"go.uber.org/zap"
)

// SessionCreator is satisfied by the Stripe checkout/session client.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type StripeGateway struct {
	sessions SessionCreator
	cfg      Config
	breaker  *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
	logger   *zap.Logger
}

func NewStripeGateway(sessions SessionCreator, cfg Config, cb circuitbreaker.Settings, logger *zap.Logger) *StripeGateway {
	cb.IsSuccessful = countsAgainstProcessor
	return &StripeGateway{
		sessions: sessions,
		cfg:      cfg,
		breaker:  circuitbreaker.New[*stripe.CheckoutSession](cb, logger),
		logger:   logger,
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	params := BuildSessionParams(req, g.cfg)
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cs, err := g.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return g.sessions.New(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return toSession(cs)
}

// BuildSessionParams maps the request onto a one-off payment checkout session.
func BuildSessionParams(req *SessionRequest, cfg Config) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(li.Name),
					Metadata: productMetadata(li),
				},
				UnitAmount: stripe.Int64(li.UnitAmount.MinorUnits()),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(cfg.AllowedCountries),
		},
		LineItems:         lineItems,
		ClientReferenceID: stripe.String(req.ClientReferenceID),
		SuccessURL:        stripe.String(cfg.SuccessURL),
		CancelURL:         stripe.String(cfg.CancelURL),
	}
	if cfg.ShippingRateID != "" {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRate: stripe.String(cfg.ShippingRateID)},
		}
	}
	params.AddMetadata("customerName", req.CustomerName)

	return params
}

// productMetadata omits size and color keys entirely when the cart item has none.
func productMetadata(li LineItem) map[string]string {
	md := map[string]string{"productId": li.ProductID}
	if li.Size != "" {
		md["size"] = li.Size
	}
	if li.Color != "" {
		md["color"] = li.Color
	}
	return md
}

func toSession(cs *stripe.CheckoutSession) (*Session, error) {
	if cs == nil || cs.ID == "" {
		return nil, errors.New("payment processor returned a session without id")
	}

	var descriptor json.RawMessage
	if cs.LastResponse != nil && len(cs.LastResponse.RawJSON) > 0 {
		descriptor = cs.LastResponse.RawJSON
	} else {
		raw, err := json.Marshal(cs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode checkout session: %w", err)
		}
		descriptor = raw
	}

	return &Session{ID: cs.ID, URL: cs.URL, Descriptor: descriptor}, nil
}

// countsAgainstProcessor keeps request-level rejections (bad params, card data) from
// opening the breaker; only transport failures, 429s and 5xx do.
func countsAgainstProcessor(err error) bool {
	if err == nil {
		return true
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.HTTPStatusCode != 429
	}
	return false
}
