package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
)

var ErrUnavailable = errors.New("payment processor unavailable")

const (
	successPath = "/payment_success"
	cancelPath  = "/cart"
)

type Config struct {
	Currency         string
	AllowedCountries []string
	ShippingRateID   string
	SuccessURL       string
	CancelURL        string
}

// NewConfig derives the redirect targets from the storefront base URL.
func NewConfig(storeURL, currency, shippingRateID string, allowedCountries []string) Config {
	base := strings.TrimRight(storeURL, "/")
	return Config{
		Currency:         strings.ToLower(currency),
		AllowedCountries: allowedCountries,
		ShippingRateID:   shippingRateID,
		SuccessURL:       base + successPath,
		CancelURL:        base + cancelPath,
	}
}

type LineItem struct {
	ProductID  string
	Name       string
	Size       string
	Color      string
	UnitAmount domain.Money
	Quantity   int64
}

type SessionRequest struct {
	LineItems         []LineItem
	ClientReferenceID string
	CustomerName      string
	IdempotencyKey    string
}

// Session is the processor's descriptor. Descriptor is returned to the caller verbatim.
type Session struct {
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	Descriptor json.RawMessage `json:"descriptor"`
}

type Gateway interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
}

// LineItemsFromCart builds one line item per cart item.
func LineItemsFromCart(items []domain.CartItem) []LineItem {
	lineItems := make([]LineItem, 0, len(items))
	for _, ci := range items {
		li := LineItem{
			Quantity: ci.Quantity,
			Size:     ci.Size,
			Color:    ci.Color,
		}
		if ci.Item != nil {
			li.ProductID = ci.Item.ID
			li.Name = ci.Item.Title
			if ci.Item.Price != nil {
				li.UnitAmount = *ci.Item.Price
			}
		}
		lineItems = append(lineItems, li)
	}
	return lineItems
}
