package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	dbDao *DbDao
}

func NewUserRepo(dbDao *DbDao) *UserRepo {
	return &UserRepo{dbDao: dbDao}
}

var _ repository.IUserRepository = (*UserRepo)(nil)

// Create - 創建用戶, 同ID已存在則略過
func (s *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return s.dbDao.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error
}

// Read - 根據ID查詢用戶
func (s *UserRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := s.dbDao.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
