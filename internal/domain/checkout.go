package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the storefront's product snapshot sent along with a cart item.
type Product struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Price *Money `json:"price"`
}

type CartItem struct {
	Item     *Product `json:"item"`
	Quantity int64    `json:"quantity"`
	Size     string   `json:"size,omitempty"`
	Color    string   `json:"color,omitempty"`
}

type CustomerInfo struct {
	ClerkID string `json:"clerkId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type CheckoutRequest struct {
	CartItems []CartItem    `json:"cartItems"`
	Customer  *CustomerInfo `json:"customer"`
}

// CheckedTotal is Total that fails with ErrInvalidAmount instead of overflowing.
func (r *CheckoutRequest) CheckedTotal() (Money, error) {
	total := decimal.Zero
	for i, ci := range r.CartItems {
		if ci.Item == nil || ci.Item.Price == nil {
			continue
		}
		line := decimal.NewFromInt(int64(*ci.Item.Price)).Mul(decimal.NewFromInt(ci.Quantity))
		total = total.Add(line)
		if !total.BigInt().IsInt64() {
			return 0, fmt.Errorf("%w: total overflows at item %d", ErrInvalidAmount, i)
		}
	}
	return Money(total.IntPart()), nil
}

// Total sums price × quantity over the cart. Items without a price contribute nothing.
// It does not check for overflow; requests are validated with CheckedTotal first.
func (r *CheckoutRequest) Total() Money {
	var total Money
	for _, ci := range r.CartItems {
		if ci.Item == nil || ci.Item.Price == nil {
			continue
		}
		total += ci.Item.Price.Times(ci.Quantity)
	}
	return total
}

// OrderProducts maps cart items to the order's product lines, size and color as given.
func (r *CheckoutRequest) OrderProducts() []OrderProduct {
	products := make([]OrderProduct, 0, len(r.CartItems))
	for _, ci := range r.CartItems {
		p := OrderProduct{
			Quantity: ci.Quantity,
			Size:     ci.Size,
			Color:    ci.Color,
		}
		if ci.Item != nil {
			p.ProductID = ci.Item.ID
		}
		products = append(products, p)
	}
	return products
}
