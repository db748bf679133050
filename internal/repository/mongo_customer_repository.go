package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type customerDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ClerkID   string             `bson:"clerkId"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type mongoCustomerRepository struct {
	collection *mongo.Collection
}

func NewMongoCustomerRepository(db *mongo.Database) CustomerRepository {
	return &mongoCustomerRepository{
		collection: db.Collection(customersCollection),
	}
}

func (m *mongoCustomerRepository) GetByClerkID(ctx context.Context, clerkID string) (*domain.Customer, error) {
	var doc customerDocument

	err := m.collection.FindOne(ctx, bson.M{"clerkId": clerkID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &domain.Customer{
		ID:        doc.ID.Hex(),
		ClerkID:   doc.ClerkID,
		Email:     doc.Email,
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (m *mongoCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	doc := customerDocument{
		ClerkID:   customer.ClerkID,
		Email:     customer.Email,
		Name:      customer.Name,
		CreatedAt: customer.CreatedAt,
	}

	res, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCustomerExists
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		customer.ID = id.Hex()
	}
	return nil
}

func createCustomerIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "clerkId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create customer indexes: %w", err)
	}
	return nil
}
