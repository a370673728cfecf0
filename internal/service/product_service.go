package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/media"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type IProductService interface {
	AddProduct(ctx context.Context, sellerID string, input ProductInput) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	ListSellerProducts(ctx context.Context, sellerID string, search string) ([]model.Product, error)
	UpdateProduct(ctx context.Context, sellerID string, input ProductUpdateInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, sellerID string, productID string) error
}

// MediaFile 上傳檔案, Reader 由呼叫端負責關閉
type MediaFile struct {
	Name   string
	Reader io.Reader
}

type ProductInput struct {
	Name          string
	Description   string
	Category      string
	Brand         string
	Subcategory   string
	Price         decimal.Decimal
	OfferPrice    decimal.Decimal
	StockQuantity int
	Images        []MediaFile
	Video         *MediaFile
}

// ProductUpdateInput nil 欄位表示不變更
type ProductUpdateInput struct {
	ProductID      string
	Name           *string
	Description    *string
	Category       *string
	Brand          *string
	Subcategory    *string
	Price          *decimal.Decimal
	OfferPrice     *decimal.Decimal
	StockQuantity  *int
	ImagesToDelete []string
	DeleteVideo    bool
	NewImages      []MediaFile
	NewVideo       *MediaFile
}

type ProductService struct {
	productRepo repository.IProductRepository
	mediaStore  media.IMediaStore
}

func NewProductService(productRepo repository.IProductRepository, mediaStore media.IMediaStore) *ProductService {
	return &ProductService{productRepo: productRepo, mediaStore: mediaStore}
}

var _ IProductService = (*ProductService)(nil)

func validatePrices(price, offerPrice decimal.Decimal) error {
	if price.IsNegative() || offerPrice.IsNegative() {
		return invalidData("price must be >= 0")
	}
	return nil
}

func (p *ProductService) AddProduct(ctx context.Context, sellerID string, input ProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidData("name is required")
	}
	if len(input.Images) == 0 {
		return nil, invalidData("at least one image is required")
	}
	if input.StockQuantity < 0 {
		return nil, invalidData("stock quantity must be >= 0")
	}
	if err := validatePrices(input.Price, input.OfferPrice); err != nil {
		return nil, err
	}

	images, err := p.uploadAll(ctx, input.Images, media.KindImage)
	if err != nil {
		return nil, err
	}
	var videos []string
	if input.Video != nil {
		videos, err = p.uploadAll(ctx, []MediaFile{*input.Video}, media.KindVideo)
		if err != nil {
			p.destroyAll(ctx, images, media.KindImage)
			return nil, err
		}
	}

	product := &model.Product{
		UserID:        sellerID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		OfferPrice:    input.OfferPrice,
		Category:      input.Category,
		Brand:         input.Brand,
		Subcategory:   input.Subcategory,
		Images:        images,
		Videos:        videos,
		StockQuantity: input.StockQuantity,
	}
	if err := p.productRepo.CreateProduct(ctx, product); err != nil {
		p.destroyAll(ctx, images, media.KindImage)
		p.destroyAll(ctx, videos, media.KindVideo)
		return nil, err
	}
	return product, nil
}

func (p *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return p.productRepo.ListProducts(ctx, model.ProductFilter{})
}

func (p *ProductService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := p.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	return product, nil
}

func (p *ProductService) ListSellerProducts(ctx context.Context, sellerID string, search string) ([]model.Product, error) {
	return p.productRepo.ListProducts(ctx, model.ProductFilter{SellerID: sellerID, Search: strings.TrimSpace(search)})
}

// ownedProduct 不屬於該賣家的商品視為不存在
func (p *ProductService) ownedProduct(ctx context.Context, sellerID string, productID string) (*model.Product, error) {
	if productID == "" {
		return nil, invalidData("product id is required")
	}
	product, err := p.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID != sellerID {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, repository.ErrProductNotFound)
	}
	return product, nil
}

func (p *ProductService) UpdateProduct(ctx context.Context, sellerID string, input ProductUpdateInput) (*model.Product, error) {
	product, err := p.ownedProduct(ctx, sellerID, input.ProductID)
	if err != nil {
		return nil, err
	}

	applyString(&product.Name, input.Name)
	applyString(&product.Description, input.Description)
	applyString(&product.Category, input.Category)
	applyString(&product.Brand, input.Brand)
	applyString(&product.Subcategory, input.Subcategory)
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OfferPrice != nil {
		product.OfferPrice = *input.OfferPrice
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return nil, invalidData("stock quantity must be >= 0")
	}
	if strings.TrimSpace(product.Name) == "" {
		return nil, invalidData("name is required")
	}
	if err := validatePrices(product.Price, product.OfferPrice); err != nil {
		return nil, err
	}

	removedImages := make([]string, 0, len(input.ImagesToDelete))
	keptImages := make([]string, 0, len(product.Images))
	for _, url := range product.Images {
		if slices.Contains(input.ImagesToDelete, url) {
			removedImages = append(removedImages, url)
			continue
		}
		keptImages = append(keptImages, url)
	}
	if len(keptImages) == 0 && len(input.NewImages) == 0 {
		return nil, invalidData("product must keep at least one image")
	}

	newImages, err := p.uploadAll(ctx, input.NewImages, media.KindImage)
	if err != nil {
		return nil, err
	}
	var removedVideos, newVideos []string
	videos := product.Videos
	if input.NewVideo != nil {
		newVideos, err = p.uploadAll(ctx, []MediaFile{*input.NewVideo}, media.KindVideo)
		if err != nil {
			p.destroyAll(ctx, newImages, media.KindImage)
			return nil, err
		}
		removedVideos = product.Videos
		videos = newVideos
	} else if input.DeleteVideo {
		removedVideos = product.Videos
		videos = nil
	}

	product.Images = append(keptImages, newImages...)
	product.Videos = videos
	if err := p.productRepo.UpdateProduct(ctx, product); err != nil {
		p.destroyAll(ctx, newImages, media.KindImage)
		p.destroyAll(ctx, newVideos, media.KindVideo)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}

	// 資料更新成功後才刪除 CDN 上的舊檔
	p.destroyAll(ctx, removedImages, media.KindImage)
	p.destroyAll(ctx, removedVideos, media.KindVideo)

	// 未指定庫存時不寫回, 避免蓋掉讀取後才發生的下單扣減
	if input.StockQuantity != nil {
		if err := p.productRepo.SetProductStock(ctx, product.ID, *input.StockQuantity); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
			}
			return nil, err
		}
		product.StockQuantity = *input.StockQuantity
	}
	return product, nil
}

func (p *ProductService) DeleteProduct(ctx context.Context, sellerID string, productID string) error {
	product, err := p.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return err
	}

	p.destroyAll(ctx, product.Images, media.KindImage)
	p.destroyAll(ctx, product.Videos, media.KindVideo)

	if err := p.productRepo.DeleteProduct(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return err
	}
	return nil
}

// uploadAll 並行上傳並保持順序, 任一失敗則清除已上傳的檔案
func (p *ProductService) uploadAll(ctx context.Context, files []MediaFile, kind media.Kind) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if p.mediaStore == nil {
		return nil, fmt.Errorf("%w: media store", ErrServiceUnavailable)
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			url, err := p.mediaStore.Upload(gctx, f.Reader, f.Name, kind)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uploaded := make([]string, 0, len(urls))
		for _, u := range urls {
			if u != "" {
				uploaded = append(uploaded, u)
			}
		}
		p.destroyAll(ctx, uploaded, kind)
		return nil, err
	}
	return urls, nil
}

// destroyAll 失敗只記錄
func (p *ProductService) destroyAll(ctx context.Context, urls []string, kind media.Kind) {
	if p.mediaStore == nil {
		return
	}
	for _, url := range urls {
		if err := p.mediaStore.Destroy(context.WithoutCancel(ctx), url, kind); err != nil {
			log.Warn().Err(err).Str("url", url).Str("kind", string(kind)).Msg("destroy media failed")
		}
	}
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
