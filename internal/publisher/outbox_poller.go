package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventTypeOrderCreated = "order.created"
	defaultBatchSize      = 100
	defaultTick           = time.Second
)

// OrderOutbox is the slice of the order store the poller needs.
type OrderOutbox interface {
	GetUnpublished(ctx context.Context, limit int) ([]*domain.Order, error)
	MarkPublished(ctx context.Context, orderID string, at time.Time) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OrderCreatedEvent struct {
	EventType       string                `json:"eventType"`
	OrderID         string                `json:"orderId"`
	CustomerClerkID string                `json:"customerClerkId"`
	CustomerName    string                `json:"customerName"`
	Products        []domain.OrderProduct `json:"products"`
	TotalAmount     domain.Money          `json:"totalAmount"`
	StripeSessionID string                `json:"stripeSessionId"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type OutboxPoller struct {
	tick      time.Duration
	batchSize int
	orders    OrderOutbox
	writer    MessageWriter
	logger    *zap.Logger
	now       func() time.Time
}

func NewOutboxPoller(orders OrderOutbox, writer MessageWriter, logger *zap.Logger) *OutboxPoller {
	return &OutboxPoller{
		tick:      defaultTick,
		batchSize: defaultBatchSize,
		orders:    orders,
		writer:    writer,
		logger:    logger,
		now:       time.Now,
	}
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Run publishes unpublished orders on every tick until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedOrders(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedOrders(ctx context.Context) int {
	orders, err := p.orders.GetUnpublished(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("failed to fetch unpublished orders", zap.Error(err))
		return 0
	}

	published := 0
	for _, order := range orders {
		if err := p.publish(ctx, order); err != nil {
			p.logger.Warn("failed to publish order", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}

		// A failure here means the event goes out again on the next tick.
		if err := p.orders.MarkPublished(ctx, order.ID, p.now()); err != nil {
			p.logger.Warn("failed to mark order as published", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		published++
	}

	if published > 0 {
		p.logger.Info("orders published", zap.Int("count", published))
	}
	return published
}

func (p *OutboxPoller) publish(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(OrderCreatedEvent{
		EventType:       EventTypeOrderCreated,
		OrderID:         order.ID,
		CustomerClerkID: order.CustomerClerkID,
		CustomerName:    order.CustomerName,
		Products:        order.Products,
		TotalAmount:     order.TotalAmount,
		StripeSessionID: order.StripeSessionID,
		CreatedAt:       order.CreatedAt,
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID), // all events of an order land on one partition
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderCreated)},
		},
	})
}
