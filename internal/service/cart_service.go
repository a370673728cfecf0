package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

type ICartService interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	ReplaceCart(ctx context.Context, userID string, items map[string]int) (*model.Cart, error)
	// UpdateItem 回傳異動後數量, 結果不可為負
	UpdateItem(ctx context.Context, userID string, productID string, delta int) (int, error)
}

type CartService struct {
	cartRepo    repository.ICartRepository
	productRepo repository.IProductRepository
}

func NewCartService(cartRepo repository.ICartRepository, productRepo repository.IProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

var _ ICartService = (*CartService)(nil)

func (c *CartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	return c.cartRepo.Get(ctx, userID)
}

// ReplaceCart 數量為 0 的商品視為移除
func (c *CartService) ReplaceCart(ctx context.Context, userID string, items map[string]int) (*model.Cart, error) {
	cart := model.NewCart(userID)
	for productID, quantity := range items {
		if productID == "" || quantity < 0 {
			return nil, invalidData("cart quantity must be >= 0")
		}
		if quantity > 0 {
			cart.Items[productID] = quantity
		}
	}
	if err := c.cartRepo.Replace(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *CartService) UpdateItem(ctx context.Context, userID string, productID string, delta int) (int, error) {
	if productID == "" || delta == 0 {
		return 0, invalidData("product and non-zero delta are required")
	}
	if delta > 0 {
		if _, err := c.productRepo.GetProductByID(ctx, productID); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return 0, fmt.Errorf("%w: %w", ErrNotFound, err)
			}
			return 0, err
		}
	}

	quantity, err := c.cartRepo.Delta(ctx, userID, productID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientQuantity) {
			return 0, fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
		return 0, err
	}
	return quantity, nil
}
