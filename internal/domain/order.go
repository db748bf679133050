package domain

import "time"

type OrderProduct struct {
	ProductID string `json:"product"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type Order struct {
	ID              string         `json:"_id,omitempty"`
	CustomerClerkID string         `json:"customerClerkId"`
	CustomerName    string         `json:"customerName"`
	Products        []OrderProduct `json:"products"`
	TotalAmount     Money          `json:"totalAmount"`
	StripeSessionID string         `json:"stripeSessionId"`
	CreatedAt       time.Time      `json:"createdAt"`
	// PublishedAt is nil until the outbox poller has emitted the order.created event.
	PublishedAt *time.Time `json:"-"`
}
