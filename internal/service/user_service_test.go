package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	mock_repository "github.com/RoyceAzure/lab/storefront/internal/infra/repository/mock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateUser(t *testing.T) {
	testCases := []struct {
		name      string
		payload   *identity.Payload
		setUpMock func(users *mock_repository.MockIUserRepository, cart *mock_repository.MockICartRepository)
		expectErr error
		expect    *model.User
	}{
		{
			name:    "existing user",
			payload: &identity.Payload{UserID: "u1"},
			setUpMock: func(users *mock_repository.MockIUserRepository, cart *mock_repository.MockICartRepository) {
				users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(&model.User{ID: "u1", Name: "Royce"}, nil)
				cart.EXPECT().Get(gomock.Any(), "u1").Return(model.NewCart("u1"), nil)
			},
			expect: &model.User{ID: "u1", Name: "Royce"},
		},
		{
			name:    "provision with defaults",
			payload: &identity.Payload{UserID: "u2"},
			setUpMock: func(users *mock_repository.MockIUserRepository, cart *mock_repository.MockICartRepository) {
				created := &model.User{ID: "u2", Name: model.DefaultUserName, Email: "u2@temp.com", ImageURL: model.DefaultUserAvatar}
				gomock.InOrder(
					users.EXPECT().GetUserByID(gomock.Any(), "u2").Return(nil, repository.ErrUserNotFound),
					users.EXPECT().CreateUser(gomock.Any(), created).Return(nil),
					users.EXPECT().GetUserByID(gomock.Any(), "u2").Return(created, nil),
				)
				cart.EXPECT().Get(gomock.Any(), "u2").Return(model.NewCart("u2"), nil)
			},
			expect: &model.User{ID: "u2", Name: model.DefaultUserName, Email: "u2@temp.com", ImageURL: model.DefaultUserAvatar},
		},
		{
			name:      "missing identity",
			payload:   nil,
			setUpMock: func(*mock_repository.MockIUserRepository, *mock_repository.MockICartRepository) {},
			expectErr: ErrForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			users := mock_repository.NewMockIUserRepository(ctrl)
			cart := mock_repository.NewMockICartRepository(ctrl)
			tc.setUpMock(users, cart)

			user, userCart, err := NewUserService(users, cart).GetOrCreateUser(context.Background(), tc.payload)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, user)
			require.NotNil(t, userCart)
		})
	}
}

func TestAddAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	addresses := mock_repository.NewMockIAddressRepository(ctrl)
	svc := NewAddressService(addresses)

	_, err := svc.AddAddress(context.Background(), "u1", AddressInput{FullName: "Royce"})
	require.ErrorIs(t, err, ErrInvalidData)

	addresses.EXPECT().CreateAddress(gomock.Any(), gomock.Any()).Return(nil)
	address, err := svc.AddAddress(context.Background(), "u1", AddressInput{
		FullName: " Royce ", PhoneNumber: "0912", Pincode: "411001", Area: "MG Road", City: "Pune", State: "MH",
	})
	require.NoError(t, err)
	require.Equal(t, "u1", address.UserID)
	require.Equal(t, "Royce", address.FullName)
}

func TestCartUpdateItem(t *testing.T) {
	testCases := []struct {
		name      string
		delta     int
		setUpMock func(cart *mock_repository.MockICartRepository, products *mock_repository.MockIProductRepository)
		expectErr error
		expect    int
	}{
		{
			name:  "add existing product",
			delta: 2,
			setUpMock: func(cart *mock_repository.MockICartRepository, products *mock_repository.MockIProductRepository) {
				products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(&model.Product{ID: "p1"}, nil)
				cart.EXPECT().Delta(gomock.Any(), "u1", "p1", 2).Return(3, nil)
			},
			expect: 3,
		},
		{
			name:  "add unknown product",
			delta: 1,
			setUpMock: func(cart *mock_repository.MockICartRepository, products *mock_repository.MockIProductRepository) {
				products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(nil, repository.ErrProductNotFound)
			},
			expectErr: ErrNotFound,
		},
		{
			name:  "remove below zero",
			delta: -5,
			setUpMock: func(cart *mock_repository.MockICartRepository, products *mock_repository.MockIProductRepository) {
				cart.EXPECT().Delta(gomock.Any(), "u1", "p1", -5).Return(0, repository.ErrInsufficientQuantity)
			},
			expectErr: ErrInvalidData,
		},
		{
			name:      "zero delta",
			delta:     0,
			setUpMock: func(*mock_repository.MockICartRepository, *mock_repository.MockIProductRepository) {},
			expectErr: ErrInvalidData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			cart := mock_repository.NewMockICartRepository(ctrl)
			products := mock_repository.NewMockIProductRepository(ctrl)
			tc.setUpMock(cart, products)

			quantity, err := NewCartService(cart, products).UpdateItem(context.Background(), "u1", "p1", tc.delta)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, quantity)
		})
	}
}

func TestReplaceCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cart := mock_repository.NewMockICartRepository(ctrl)
	svc := NewCartService(cart, nil)

	_, err := svc.ReplaceCart(context.Background(), "u1", map[string]int{"p1": -1})
	require.ErrorIs(t, err, ErrInvalidData)

	cart.EXPECT().Replace(gomock.Any(), &model.Cart{UserID: "u1", Items: map[string]int{"p1": 2}}).Return(nil)
	replaced, err := svc.ReplaceCart(context.Background(), "u1", map[string]int{"p1": 2, "p2": 0})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"p1": 2}, replaced.Items)
}
