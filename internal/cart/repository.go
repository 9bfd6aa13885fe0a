package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
)

// Repository provides persistence for cart items. One document per item.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]CartItem, error)
	Insert(ctx context.Context, item *CartItem) (string, error)
	UpdateQuantity(ctx context.Context, id string, quantidade int) error
	Delete(ctx context.Context, id string) error
}

// MongoRepository implements Repository using a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates the repository and indexes userId for the
// per-owner load query.
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) ListByOwner(ctx context.Context, ownerID string) ([]CartItem, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	defer cur.Close(ctx)
	out := []CartItem{}
	for cur.Next(ctx) {
		var it CartItem
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Insert(ctx context.Context, item *CartItem) (string, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return "", fmt.Errorf("failed to insert cart item: %w", err)
	}
	return item.ID, nil
}

func (r *MongoRepository) UpdateQuantity(ctx context.Context, id string, quantidade int) error {
	set := bson.M{"quantidade": quantidade, "updatedAt": time.Now().UTC()}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}
