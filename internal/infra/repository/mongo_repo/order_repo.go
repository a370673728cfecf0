package mongo_repo

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{collection: db.Collection(orderCollection)}
}

var _ repository.IOrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var doc orderDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, err
	}
	order := doc.toModel()
	return &order, nil
}

func (r *OrderRepo) GetOrdersByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *OrderRepo) GetOrdersByProductIDs(ctx context.Context, productIDs []string) ([]model.Order, error) {
	if len(productIDs) == 0 {
		return []model.Order{}, nil
	}
	return r.find(ctx, bson.M{"items.product": bson.M{"$in": productIDs}})
}

func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, update model.OrderStatusUpdate) (*model.Order, error) {
	set := bson.M{}
	if update.Status != nil {
		set["status"] = string(*update.Status)
	}
	if update.PaymentStatus != nil {
		set["paymentStatus"] = string(*update.PaymentStatus)
	}
	if update.CancellationReason != nil {
		set["cancellationReason"] = *update.CancellationReason
	}
	return r.findAndSet(ctx, orderID, set)
}

func (r *OrderRepo) UpdatePayment(ctx context.Context, orderID string, update model.PaymentUpdate) (*model.Order, error) {
	set := bson.M{"paymentStatus": string(update.PaymentStatus)}
	if update.GatewayPaymentID != "" {
		set["razorpayPaymentId"] = update.GatewayPaymentID
	}
	return r.findAndSet(ctx, orderID, set)
}

func (r *OrderRepo) SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{
		"razorpayOrderId": gatewayOrderID,
		"updatedAt":       time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) findAndSet(ctx context.Context, orderID string, set bson.M) (*model.Order, error) {
	if len(set) == 0 {
		return r.GetOrderByID(ctx, orderID)
	}
	set["updatedAt"] = time.Now().UTC()

	var doc orderDoc
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, err
	}
	order := doc.toModel()
	return &order, nil
}

func (r *OrderRepo) find(ctx context.Context, query bson.M) ([]model.Order, error) {
	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toModel())
	}
	return orders, nil
}
