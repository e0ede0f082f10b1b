package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoOptionDoc represents one namespaced setting in MongoDB
type MongoOptionDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Key       string             `bson:"key"`
	Value     bson.RawValue      `bson:"value"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// DecodeValue decodes the stored value into dst
func (d *MongoOptionDoc) DecodeValue(dst any) error {
	return d.Value.Unmarshal(dst)
}
