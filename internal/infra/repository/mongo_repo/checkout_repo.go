package mongo_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const restoreTimeout = 5 * time.Second

type CheckoutRepo struct {
	client         *mongo.Client
	products       *mongo.Collection
	orders         *mongo.Collection
	useTransaction bool
}

func NewCheckoutRepo(client *mongo.Client, db *mongo.Database, useTransaction bool) *CheckoutRepo {
	return &CheckoutRepo{
		client:         client,
		products:       db.Collection(productCollection),
		orders:         db.Collection(orderCollection),
		useTransaction: useTransaction,
	}
}

var _ repository.ICheckoutRepository = (*CheckoutRepo)(nil)

/*
每個項目以 {_id, stockQuantity >= qty} 做條件式 $inc
replica set 下使用交易, standalone 則在失敗時把已扣的庫存加回去
*/
func (r *CheckoutRepo) PlaceOrder(ctx context.Context, order *model.Order) error {
	order.ID = newDocID(order.ID)
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if r.useTransaction {
		return r.placeOrderInTransaction(ctx, order)
	}
	return r.placeOrderWithCompensation(ctx, order)
}

func (r *CheckoutRepo) placeOrderInTransaction(ctx context.Context, order *model.Order) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for _, change := range order.StockChanges() {
			if err := r.deduct(sessCtx, change); err != nil {
				return nil, err
			}
		}
		_, err := r.orders.InsertOne(sessCtx, toOrderDoc(order))
		return nil, err
	})
	return err
}

func (r *CheckoutRepo) placeOrderWithCompensation(ctx context.Context, order *model.Order) error {
	applied := make([]model.StockChange, 0, len(order.Items))
	for _, change := range order.StockChanges() {
		if err := r.deduct(ctx, change); err != nil {
			return errors.Join(err, r.restore(ctx, applied))
		}
		applied = append(applied, change)
	}

	if _, err := r.orders.InsertOne(ctx, toOrderDoc(order)); err != nil {
		return errors.Join(err, r.restore(ctx, applied))
	}
	return nil
}

func (r *CheckoutRepo) deduct(ctx context.Context, change model.StockChange) error {
	result, err := r.products.UpdateOne(ctx,
		bson.M{"_id": change.ProductID, "stockQuantity": bson.M{"$gte": change.Quantity}},
		bson.M{
			"$inc": bson.M{"stockQuantity": -change.Quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s", repository.ErrProductStockNotEnough, change.ProductID)
	}
	return nil
}

// restore 不受原請求取消影響
func (r *CheckoutRepo) restore(ctx context.Context, applied []model.StockChange) error {
	if len(applied) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	var errs []error
	for _, change := range applied {
		_, err := r.products.UpdateOne(ctx,
			bson.M{"_id": change.ProductID},
			bson.M{"$inc": bson.M{"stockQuantity": change.Quantity}},
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("restore stock of product %s: %w", change.ProductID, err))
		}
	}
	return errors.Join(errs...)
}
