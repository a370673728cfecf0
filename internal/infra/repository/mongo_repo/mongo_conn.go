package mongo_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productCollection = "products"
	orderCollection   = "orders"
	userCollection    = "users"
	addressCollection = "addresses"
)

func GetMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes 冪等性
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		productCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		},
		orderCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "items.product", Value: 1}}},
		},
		addressCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// NewStore 組出 mongo 版本的 repository
// useTransaction 需要 replica set, 否則以補償方式還原庫存
func NewStore(client *mongo.Client, dbName string, useTransaction bool) *repository.Store {
	db := client.Database(dbName)
	return repository.NewStore(
		NewProductRepo(db),
		NewOrderRepo(db),
		NewCheckoutRepo(client, db, useTransaction),
		NewUserRepo(db),
		NewAddressRepo(db),
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		},
	)
}
