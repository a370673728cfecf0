package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

type IUserService interface {
	// GetOrCreateUser 使用者不存在時以 token 資訊建立
	GetOrCreateUser(ctx context.Context, payload *identity.Payload) (*model.User, *model.Cart, error)
}

type IAddressService interface {
	AddAddress(ctx context.Context, userID string, input AddressInput) (*model.Address, error)
	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)
}

type UserService struct {
	userRepo repository.IUserRepository
	cartRepo repository.ICartRepository
}

func NewUserService(userRepo repository.IUserRepository, cartRepo repository.ICartRepository) *UserService {
	return &UserService{userRepo: userRepo, cartRepo: cartRepo}
}

var _ IUserService = (*UserService)(nil)

func (u *UserService) GetOrCreateUser(ctx context.Context, payload *identity.Payload) (*model.User, *model.Cart, error) {
	if payload == nil || payload.UserID == "" {
		return nil, nil, fmt.Errorf("%w: missing identity", ErrForbidden)
	}

	user, err := u.userRepo.GetUserByID(ctx, payload.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = newUserFromPayload(payload)
		if err := u.userRepo.CreateUser(ctx, user); err != nil {
			return nil, nil, err
		}
		// 併發建立時以資料庫中的為準
		user, err = u.userRepo.GetUserByID(ctx, payload.UserID)
	}
	if err != nil {
		return nil, nil, err
	}

	cart, err := u.cartRepo.Get(ctx, payload.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, cart, nil
}

func newUserFromPayload(payload *identity.Payload) *model.User {
	user := &model.User{
		ID:       payload.UserID,
		Name:     strings.TrimSpace(payload.Name),
		Email:    payload.Email,
		ImageURL: payload.Picture,
	}
	if user.Name == "" {
		user.Name = model.DefaultUserName
	}
	if user.Email == "" {
		user.Email = payload.UserID + "@temp.com"
	}
	if user.ImageURL == "" {
		user.ImageURL = model.DefaultUserAvatar
	}
	return user
}

type AddressInput struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Pincode     string `json:"pincode"`
	Area        string `json:"area"`
	City        string `json:"city"`
	State       string `json:"state"`
}

type AddressService struct {
	addressRepo repository.IAddressRepository
}

func NewAddressService(addressRepo repository.IAddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

var _ IAddressService = (*AddressService)(nil)

func (a *AddressService) AddAddress(ctx context.Context, userID string, input AddressInput) (*model.Address, error) {
	fields := map[string]string{
		"fullName":    input.FullName,
		"phoneNumber": input.PhoneNumber,
		"pincode":     input.Pincode,
		"area":        input.Area,
		"city":        input.City,
		"state":       input.State,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return nil, invalidData("%s is required", name)
		}
	}

	address := &model.Address{
		UserID:      userID,
		FullName:    strings.TrimSpace(input.FullName),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Pincode:     strings.TrimSpace(input.Pincode),
		Area:        strings.TrimSpace(input.Area),
		City:        strings.TrimSpace(input.City),
		State:       strings.TrimSpace(input.State),
	}
	if err := a.addressRepo.CreateAddress(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (a *AddressService) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	return a.addressRepo.GetAddressesByUserID(ctx, userID)
}
