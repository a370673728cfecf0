package redis_repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/redis/go-redis/v9"
)

type CartRepo struct {
	CartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{CartCache: cartCache}
}

var _ repository.ICartRepository = (*CartRepo)(nil)

func generateCartItemKey(userID string) string {
	return fmt.Sprintf("cart:%s:items", userID)
}

// 先刪除再整批寫入, 數量<=0的商品不寫入
var replaceScript = redis.NewScript(`
	redis.call('DEL', KEYS[1])
	for i = 1, #ARGV, 2 do
		if tonumber(ARGV[i+1]) > 0 then
			redis.call('HSET', KEYS[1], ARGV[i], ARGV[i+1])
		end
	end
	return 1
`)

// 扣減後小於0回傳 -2, 剛好為0則刪除欄位
var deltaScript = redis.NewScript(`
	local key = KEYS[1]
	local product_id = ARGV[1]
	local delta = tonumber(ARGV[2])

	local current = tonumber(redis.call('HGET', key, product_id) or "0")
	if current + delta < 0 then
		return -2
	end
	if current + delta == 0 then
		redis.call('HDEL', key, product_id)
		return 0
	end

	return redis.call('HINCRBY', key, product_id, delta)
`)

// Get 購物車不存在時回傳空購物車
func (r *CartRepo) Get(ctx context.Context, userID string) (*model.Cart, error) {
	items, err := r.CartCache.HGetAll(ctx, generateCartItemKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := model.NewCart(userID)
	for productID, quantityStr := range items {
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for product %s: %w", productID, err)
		}
		if quantity > 0 {
			cart.Items[productID] = quantity
		}
	}
	return cart, nil
}

// Replace 以傳入的購物車覆蓋
func (r *CartRepo) Replace(ctx context.Context, cart *model.Cart) error {
	args := make([]interface{}, 0, len(cart.Items)*2)
	for productID, quantity := range cart.Items {
		args = append(args, productID, quantity)
	}

	err := replaceScript.Run(ctx, r.CartCache, []string{generateCartItemKey(cart.UserID)}, args...).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to replace cart: %w", err)
	}
	return nil
}

// Delta 原子增減單一商品數量
func (r *CartRepo) Delta(ctx context.Context, userID string, productID string, delta int) (int, error) {
	result, err := deltaScript.Run(ctx, r.CartCache, []string{generateCartItemKey(userID)}, productID, delta).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to update cart item: %w", err)
	}
	if result == -2 {
		return 0, fmt.Errorf("%w product %s", repository.ErrInsufficientQuantity, productID)
	}
	return int(result), nil
}

// Clear 清空購物車
func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	if err := r.CartCache.Del(ctx, generateCartItemKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
