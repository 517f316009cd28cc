package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes declared by the data model:
// products.productId, users.userId and users.email. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := []struct {
		collection string
		field      string
	}{
		{productsCollection, "productId"},
		{usersCollection, "userId"},
		{usersCollection, "email"},
	}

	for _, s := range specs {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: s.field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(s.field + "_unique"),
		}
		if _, err := db.Collection(s.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index %s.%s: %w", s.collection, s.field, err)
		}
	}
	return nil
}
