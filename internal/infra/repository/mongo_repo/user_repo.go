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

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{collection: db.Collection(userCollection)}
}

var _ repository.IUserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var doc userDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &model.User{
		ID:        doc.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		ImageURL:  doc.ImageURL,
		BaseModel: model.BaseModel{CreatedAt: doc.Date, UpdatedAt: doc.UpdatedAt},
	}, nil
}

// CreateUser 同ID已存在則不覆蓋
func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$setOnInsert": userDoc{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			ImageURL: user.ImageURL,
			Date:     user.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
