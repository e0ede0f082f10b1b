package entity

import (
	"time"

	"storefront-relay/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoSubscriptionDoc represents a subscription synced from the storefront
type MongoSubscriptionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	SubscriptionID string             `bson:"subscriptionId"`
	OrderID        uint64             `bson:"orderId"`
	SignUpFee      string             `bson:"signUpFee"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSubscriptionDoc) ToDomain() (*domain.Subscription, error) {
	fee := decimal.Zero
	if d.SignUpFee != "" {
		parsed, err := decimal.NewFromString(d.SignUpFee)
		if err != nil {
			return nil, err
		}
		fee = parsed
	}
	return &domain.Subscription{
		ID:        d.SubscriptionID,
		OrderID:   d.OrderID,
		SignUpFee: fee,
	}, nil
}

// MongoSubscriptionDocFromDomain converts a domain entity to a MongoDB document
func MongoSubscriptionDocFromDomain(sub *domain.Subscription) *MongoSubscriptionDoc {
	return &MongoSubscriptionDoc{
		SubscriptionID: sub.ID,
		OrderID:        sub.OrderID,
		SignUpFee:      sub.SignUpFee.String(),
	}
}
