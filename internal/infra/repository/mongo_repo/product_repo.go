package mongo_repo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepo struct {
	collection *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{collection: db.Collection(productCollection)}
}

var _ repository.IProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	product.ID = newDocID(product.ID)
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, toProductDoc(product))
	return err
}

func (r *ProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	var doc productDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrProductNotFound
		}
		return nil, err
	}
	product := doc.toModel()
	return &product, nil
}

func (r *ProductRepo) GetProductsByIDs(ctx context.Context, productIDs []string) ([]model.Product, error) {
	if len(productIDs) == 0 {
		return []model.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": productIDs}}, nil)
}

func (r *ProductRepo) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query := bson.M{}
	if filter.SellerID != "" {
		query["userId"] = filter.SellerID
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"category": pattern},
			bson.M{"brand": pattern},
			bson.M{"description": pattern},
			bson.M{"subcategory": pattern},
		}
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	doc := toProductDoc(product)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": bson.M{
		"name":        doc.Name,
		"description": doc.Description,
		"price":       doc.Price,
		"offerPrice":  doc.OfferPrice,
		"category":    doc.Category,
		"brand":       doc.Brand,
		"subcategory": doc.Subcategory,
		"image":       doc.Images,
		"videos":      doc.Videos,
		"updatedAt":   doc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) SetProductStock(ctx context.Context, productID string, stock int) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": bson.M{
		"stockQuantity": stock,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, productID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]model.Product, error) {
	findOpts := []*options.FindOptions{}
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := r.collection.Find(ctx, query, findOpts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}
	return products, nil
}
