package repository

import (
	"context"
	"fmt"
	"time"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/infrastructure/repository/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSubscriptionRepository implements SubscriptionSource using MongoDB
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new MongoDB subscription repository
func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{
		collection: db.Collection("subscriptions"),
	}
}

// SubscriptionIDsForOrder lists the subscriptions created by orderID
func (r *MongoSubscriptionRepository) SubscriptionIDsForOrder(ctx context.Context, orderID uint64) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"subscriptionId": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"orderId": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc entity.MongoSubscriptionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		ids = append(ids, doc.SubscriptionID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return ids, nil
}

// GetSubscription retrieves a subscription by its storefront id
func (r *MongoSubscriptionRepository) GetSubscription(ctx context.Context, id string) (*domain.Subscription, error) {
	var doc entity.MongoSubscriptionDoc
	err := r.collection.FindOne(ctx, bson.M{"subscriptionId": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub, err := doc.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to parse subscription %s: %w", id, err)
	}
	return sub, nil
}

// SaveSubscription upserts a subscription synced from the storefront
func (r *MongoSubscriptionRepository) SaveSubscription(ctx context.Context, sub *domain.Subscription) error {
	doc := entity.MongoSubscriptionDocFromDomain(sub)
	now := time.Now()
	filter := bson.M{"subscriptionId": doc.SubscriptionID}
	update := bson.M{
		"$set": bson.M{
			"subscriptionId": doc.SubscriptionID,
			"orderId":        doc.OrderID,
			"signUpFee":      doc.SignUpFee,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}
