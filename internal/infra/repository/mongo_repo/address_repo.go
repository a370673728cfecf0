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

type AddressRepo struct {
	collection *mongo.Collection
}

func NewAddressRepo(db *mongo.Database) *AddressRepo {
	return &AddressRepo{collection: db.Collection(addressCollection)}
}

var _ repository.IAddressRepository = (*AddressRepo)(nil)

func (r *AddressRepo) CreateAddress(ctx context.Context, address *model.Address) error {
	address.ID = newDocID(address.ID)
	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, addressDoc{
		ID:          address.ID,
		UserID:      address.UserID,
		FullName:    address.FullName,
		PhoneNumber: address.PhoneNumber,
		Pincode:     address.Pincode,
		Area:        address.Area,
		City:        address.City,
		State:       address.State,
		Date:        address.CreatedAt,
	})
	return err
}

func (r *AddressRepo) GetAddressByID(ctx context.Context, addressID string) (*model.Address, error) {
	var doc addressDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": addressID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrAddressNotFound
		}
		return nil, err
	}
	address := doc.toModel()
	return &address, nil
}

func (r *AddressRepo) GetAddressesByIDs(ctx context.Context, addressIDs []string) ([]model.Address, error) {
	if len(addressIDs) == 0 {
		return []model.Address{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": addressIDs}})
}

func (r *AddressRepo) GetAddressesByUserID(ctx context.Context, userID string) ([]model.Address, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *AddressRepo) find(ctx context.Context, query bson.M) ([]model.Address, error) {
	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []addressDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	addresses := make([]model.Address, 0, len(docs))
	for _, doc := range docs {
		addresses = append(addresses, doc.toModel())
	}
	return addresses, nil
}
