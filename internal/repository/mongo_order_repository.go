package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type orderProductDocument struct {
	// Product holds an ObjectID when the storefront id is one, the raw string otherwise.
	Product  any    `bson:"product"`
	Quantity int64  `bson:"quantity"`
	Size     string `bson:"size,omitempty"`
	Color    string `bson:"color,omitempty"`
}

type orderDocument struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty"`
	CustomerClerkID string                 `bson:"customerClerkId"`
	CustomerName    string                 `bson:"customerName"`
	Products        []orderProductDocument `bson:"products"`
	TotalAmount     primitive.Decimal128   `bson:"totalAmount"`
	StripeSessionID string                 `bson:"stripeSessionId"`
	CreatedAt       time.Time              `bson:"createdAt"`
	// PublishedAt is written as an explicit null; orders stored before the outbox
	// existed have no field at all and are never picked up by it.
	PublishedAt *time.Time `bson:"publishedAt"`
}

// storedOrderDocument is the read side of orderDocument. Earlier writers stored
// totalAmount as a double, so the total is decoded by moneyFromBSON.
type storedOrderDocument struct {
	ID              primitive.ObjectID     `bson:"_id"`
	CustomerClerkID string                 `bson:"customerClerkId"`
	CustomerName    string                 `bson:"customerName"`
	Products        []orderProductDocument `bson:"products"`
	TotalAmount     bson.RawValue          `bson:"totalAmount"`
	StripeSessionID string                 `bson:"stripeSessionId"`
	CreatedAt       time.Time              `bson:"createdAt"`
	PublishedAt     *time.Time             `bson:"publishedAt"`
}

type mongoOrderRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewMongoOrderRepository(db *mongo.Database, logger *zap.Logger) OrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mongoOrderRepository{
		collection: db.Collection(ordersCollection),
		logger:     logger,
	}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc, err := toOrderDocument(order)
	if err != nil {
		return err
	}

	res, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSession
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id.Hex()
	}
	return nil
}

func (m *mongoOrderRepository) ListByCustomer(ctx context.Context, clerkID string) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.collection.Find(ctx, bson.M{"customerClerkId": clerkID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return m.decodeOrders(ctx, cursor)
}

func (m *mongoOrderRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, bson.M{"publishedAt": bson.M{"$type": "null"}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get unpublished orders: %w", err)
	}
	return m.decodeOrders(ctx, cursor)
}

func (m *mongoOrderRepository) MarkPublished(ctx context.Context, orderID string, at time.Time) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}

	result, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"publishedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark order published: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func createOrderIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stripeSessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "customerClerkId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// decodeOrders skips documents that cannot be mapped to an order, logging each one.
func (m *mongoOrderRepository) decodeOrders(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Order, error) {
	defer cursor.Close(ctx)

	orders := make([]*domain.Order, 0)
	for cursor.Next(ctx) {
		var doc storedOrderDocument
		err := cursor.Decode(&doc)
		var order *domain.Order
		if err == nil {
			order, err = fromOrderDocument(&doc)
		}
		if err != nil {
			m.logger.Warn("skipping undecodable order",
				zap.String("order_id", cursor.Current.Lookup("_id").String()),
				zap.Error(err))
			continue
		}
		orders = append(orders, order)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return orders, nil
}

func toOrderDocument(order *domain.Order) (*orderDocument, error) {
	total, err := primitive.ParseDecimal128(order.TotalAmount.Decimal().String())
	if err != nil {
		return nil, fmt.Errorf("failed to convert order total %s: %w", order.TotalAmount, err)
	}

	products := make([]orderProductDocument, 0, len(order.Products))
	for _, p := range order.Products {
		products = append(products, orderProductDocument{
			Product:  productRef(p.ProductID),
			Quantity: p.Quantity,
			Size:     p.Size,
			Color:    p.Color,
		})
	}

	return &orderDocument{
		CustomerClerkID: order.CustomerClerkID,
		CustomerName:    order.CustomerName,
		Products:        products,
		TotalAmount:     total,
		StripeSessionID: order.StripeSessionID,
		CreatedAt:       order.CreatedAt,
		PublishedAt:     order.PublishedAt,
	}, nil
}

func fromOrderDocument(doc *storedOrderDocument) (*domain.Order, error) {
	total, err := moneyFromBSON(doc.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("order %s has invalid total: %w", doc.ID.Hex(), err)
	}

	products := make([]domain.OrderProduct, 0, len(doc.Products))
	for _, p := range doc.Products {
		products = append(products, domain.OrderProduct{
			ProductID: productID(p.Product),
			Quantity:  p.Quantity,
			Size:      p.Size,
			Color:     p.Color,
		})
	}

	return &domain.Order{
		ID:              doc.ID.Hex(),
		CustomerClerkID: doc.CustomerClerkID,
		CustomerName:    doc.CustomerName,
		Products:        products,
		TotalAmount:     total,
		StripeSessionID: doc.StripeSessionID,
		CreatedAt:       doc.CreatedAt,
		PublishedAt:     doc.PublishedAt,
	}, nil
}

// moneyFromBSON accepts a Decimal128, a double or an integer in major units. Doubles
// are rounded to the minor unit; other values must already be exact.
func moneyFromBSON(v bson.RawValue) (domain.Money, error) {
	var d decimal.Decimal
	switch v.Type {
	case bson.TypeDecimal128:
		dec, ok := v.Decimal128OK()
		if !ok {
			return 0, fmt.Errorf("%w: malformed decimal128", domain.ErrInvalidAmount)
		}
		return domain.ParseMoney(dec.String())
	case bson.TypeDouble:
		f, ok := v.DoubleOK()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, v)
		}
		d = decimal.NewFromFloat(f).Round(2)
	case bson.TypeInt32:
		d = decimal.NewFromInt(int64(v.Int32()))
	case bson.TypeInt64:
		d = decimal.NewFromInt(v.Int64())
	default:
		return 0, fmt.Errorf("%w: unsupported bson type %s", domain.ErrInvalidAmount, v.Type)
	}
	return domain.ParseMoney(d.String())
}

func productRef(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func productID(ref any) string {
	switch v := ref.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
