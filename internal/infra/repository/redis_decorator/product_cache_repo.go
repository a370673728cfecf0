package redis_decorator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultProductTTL = 5 * time.Minute

func generateProductKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

/*
cache-aside: 只快取單一商品查詢
寫入與刪除先改db, 成功後刪除快取, 刪除失敗延遲重試一次
*/
type CacheAsideProductRepo struct {
	repository.IProductRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCacheAsideProductRepo(db repository.IProductRepository, cache *redis.Client, ttl time.Duration) *CacheAsideProductRepo {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}
	return &CacheAsideProductRepo{IProductRepository: db, cache: cache, ttl: ttl}
}

var _ repository.IProductRepository = (*CacheAsideProductRepo)(nil)

func (p *CacheAsideProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	key := generateProductKey(productID)

	data, err := p.cache.Get(ctx, key).Bytes()
	if err == nil {
		var product model.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		log.Warn().Str("product_id", productID).Msg("corrupted product cache entry, fallback to db")
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("product_id", productID).Msg("product cache get failed, fallback to db")
	}

	product, err := p.IProductRepository.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := p.cache.Set(ctx, key, data, p.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("product_id", productID).Msg("product cache set failed")
		}
	}
	return product, nil
}

func (p *CacheAsideProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.UpdateProduct(ctx, product); err != nil {
		return err
	}
	p.Invalidate(ctx, product.ID)
	return nil
}

func (p *CacheAsideProductRepo) SetProductStock(ctx context.Context, productID string, stock int) error {
	if err := p.IProductRepository.SetProductStock(ctx, productID, stock); err != nil {
		return err
	}
	p.Invalidate(ctx, productID)
	return nil
}

func (p *CacheAsideProductRepo) DeleteProduct(ctx context.Context, productID string) error {
	if err := p.IProductRepository.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	p.Invalidate(ctx, productID)
	return nil
}

// Invalidate 刪除商品快取, 失敗時 500ms 後再試一次
func (p *CacheAsideProductRepo) Invalidate(ctx context.Context, productIDs ...string) {
	if len(productIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, generateProductKey(id))
	}

	if err := p.cache.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("product cache invalidate failed, retry later")
		go func() {
			time.Sleep(500 * time.Millisecond)
			retryCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := p.cache.Del(retryCtx, keys...).Err(); err != nil {
				log.Error().Err(err).Strs("keys", keys).Msg("product cache invalidate retry failed")
			}
		}()
	}
}

// CacheInvalidatingCheckoutRepo 下單成功後讓被扣庫存的商品快取失效
type CacheInvalidatingCheckoutRepo struct {
	repository.ICheckoutRepository
	products *CacheAsideProductRepo
}

func NewCacheInvalidatingCheckoutRepo(checkout repository.ICheckoutRepository, products *CacheAsideProductRepo) *CacheInvalidatingCheckoutRepo {
	return &CacheInvalidatingCheckoutRepo{ICheckoutRepository: checkout, products: products}
}

var _ repository.ICheckoutRepository = (*CacheInvalidatingCheckoutRepo)(nil)

func (c *CacheInvalidatingCheckoutRepo) PlaceOrder(ctx context.Context, order *model.Order) error {
	if err := c.ICheckoutRepository.PlaceOrder(ctx, order); err != nil {
		return err
	}
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	c.products.Invalidate(ctx, ids...)
	return nil
}

// WrapStore 以快取裝飾 store 的商品與下單 repository
func WrapStore(store *repository.Store, cache *redis.Client, ttl time.Duration) *repository.Store {
	products := NewCacheAsideProductRepo(store.Products, cache, ttl)
	checkout := NewCacheInvalidatingCheckoutRepo(store.Checkout, products)
	return repository.NewStore(products, store.Orders, checkout, store.Users, store.Addresses, store.Close)
}
