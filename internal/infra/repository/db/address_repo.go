package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"gorm.io/gorm"
)

type AddressRepo struct {
	dbDao *DbDao
}

func NewAddressRepo(dbDao *DbDao) *AddressRepo {
	return &AddressRepo{dbDao: dbDao}
}

var _ repository.IAddressRepository = (*AddressRepo)(nil)

func (s *AddressRepo) CreateAddress(ctx context.Context, address *model.Address) error {
	return s.dbDao.WithContext(ctx).Create(address).Error
}

func (s *AddressRepo) GetAddressByID(ctx context.Context, addressID string) (*model.Address, error) {
	var address model.Address
	err := s.dbDao.WithContext(ctx).First(&address, "id = ?", addressID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}

func (s *AddressRepo) GetAddressesByIDs(ctx context.Context, addressIDs []string) ([]model.Address, error) {
	var addresses []model.Address
	if len(addressIDs) == 0 {
		return addresses, nil
	}
	err := s.dbDao.WithContext(ctx).Where("id IN ?", addressIDs).Find(&addresses).Error
	return addresses, err
}

func (s *AddressRepo) GetAddressesByUserID(ctx context.Context, userID string) ([]model.Address, error) {
	var addresses []model.Address
	err := s.dbDao.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error
	return addresses, err
}
