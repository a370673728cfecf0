package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/media"
	mock_media "github.com/RoyceAzure/lab/storefront/internal/infra/media/mock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	mock_repository "github.com/RoyceAzure/lab/storefront/internal/infra/repository/mock"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProductServiceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	products *mock_repository.MockIProductRepository
	media    *mock_media.MockIMediaStore
	svc      *ProductService
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.products = mock_repository.NewMockIProductRepository(s.ctrl)
	s.media = mock_media.NewMockIMediaStore(s.ctrl)
	s.svc = NewProductService(s.products, s.media)
}

func (s *ProductServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

func file(name string) MediaFile {
	return MediaFile{Name: name, Reader: strings.NewReader(name)}
}

func cdnURL(name string) string {
	return "https://res.cloudinary.com/demo/image/upload/products/images/" + name
}

func (s *ProductServiceTestSuite) expectUpload(kind media.Kind, names ...string) {
	for _, name := range names {
		s.media.EXPECT().Upload(gomock.Any(), gomock.Any(), name, kind).Return(cdnURL(name), nil)
	}
}

func (s *ProductServiceTestSuite) TestAddProduct() {
	s.expectUpload(media.KindImage, "a.png", "b.png")
	s.expectUpload(media.KindVideo, "c.mp4")
	s.products.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *model.Product) error {
		p.ID = "p1"
		return nil
	})

	product, err := s.svc.AddProduct(context.Background(), "seller-1", ProductInput{
		Name:          " Shoe ",
		Price:         decimal.NewFromInt(200),
		OfferPrice:    decimal.NewFromInt(150),
		StockQuantity: 4,
		Images:        []MediaFile{file("a.png"), file("b.png")},
		Video:         &MediaFile{Name: "c.mp4", Reader: strings.NewReader("v")},
	})
	s.Require().NoError(err)
	s.Equal("p1", product.ID)
	s.Equal("Shoe", product.Name)
	s.Equal("seller-1", product.UserID)
	// 上傳順序與輸入一致
	s.Equal([]string{cdnURL("a.png"), cdnURL("b.png")}, product.Images)
	s.Equal([]string{cdnURL("c.mp4")}, product.Videos)
}

func (s *ProductServiceTestSuite) TestAddProductValidation() {
	_, err := s.svc.AddProduct(context.Background(), "seller-1", ProductInput{Name: "Shoe"})
	s.ErrorIs(err, ErrInvalidData)

	_, err = s.svc.AddProduct(context.Background(), "seller-1", ProductInput{Images: []MediaFile{file("a.png")}})
	s.ErrorIs(err, ErrInvalidData)

	_, err = s.svc.AddProduct(context.Background(), "seller-1", ProductInput{
		Name: "Shoe", StockQuantity: -1, Images: []MediaFile{file("a.png")},
	})
	s.ErrorIs(err, ErrInvalidData)
}

func (s *ProductServiceTestSuite) TestAddProductUploadFailureCleansUp() {
	s.expectUpload(media.KindImage, "a.png")
	s.media.EXPECT().Upload(gomock.Any(), gomock.Any(), "b.png", media.KindImage).Return("", media.ErrUploadFailed)
	s.media.EXPECT().Destroy(gomock.Any(), cdnURL("a.png"), media.KindImage).Return(nil).MaxTimes(1)

	_, err := s.svc.AddProduct(context.Background(), "seller-1", ProductInput{
		Name:   "Shoe",
		Images: []MediaFile{file("a.png"), file("b.png")},
	})
	s.ErrorIs(err, media.ErrUploadFailed)
}

func (s *ProductServiceTestSuite) TestUpdateProduct() {
	existing := &model.Product{
		ID:     "p1",
		UserID: "seller-1",
		Name:   "Shoe",
		Images: []string{cdnURL("old.png"), cdnURL("keep.png")},
		Videos: []string{cdnURL("old.mp4")},
	}
	newName := "Runner"
	stock := 9

	s.products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(existing, nil)
	s.expectUpload(media.KindImage, "new.png")
	s.products.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)
	s.media.EXPECT().Destroy(gomock.Any(), cdnURL("old.png"), media.KindImage).Return(nil)
	s.media.EXPECT().Destroy(gomock.Any(), cdnURL("old.mp4"), media.KindVideo).Return(errors.New("cdn down"))
	s.products.EXPECT().SetProductStock(gomock.Any(), "p1", 9).Return(nil)

	product, err := s.svc.UpdateProduct(context.Background(), "seller-1", ProductUpdateInput{
		ProductID:      "p1",
		Name:           &newName,
		StockQuantity:  &stock,
		ImagesToDelete: []string{cdnURL("old.png")},
		DeleteVideo:    true,
		NewImages:      []MediaFile{file("new.png")},
	})
	s.Require().NoError(err)
	s.Equal("Runner", product.Name)
	s.Equal(9, product.StockQuantity)
	s.Equal([]string{cdnURL("keep.png"), cdnURL("new.png")}, product.Images)
	s.Empty(product.Videos)
}

// 只改名稱時不得寫回讀取時的庫存
func (s *ProductServiceTestSuite) TestUpdateProductNameOnlyKeepsStock() {
	stored := model.Product{ID: "p1", UserID: "seller-1", Name: "Shoe", Images: []string{cdnURL("a.png")}, StockQuantity: 5}
	newName := "Runner"

	s.products.EXPECT().GetProductByID(gomock.Any(), "p1").DoAndReturn(func(context.Context, string) (*model.Product, error) {
		read := stored
		return &read, nil
	})
	s.products.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *model.Product) error {
		// 讀取後另一筆下單扣了 2
		stored.StockQuantity -= 2
		stored.Name = p.Name
		stored.Images = p.Images
		return nil
	})
	s.products.EXPECT().SetProductStock(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	product, err := s.svc.UpdateProduct(context.Background(), "seller-1", ProductUpdateInput{ProductID: "p1", Name: &newName})
	s.Require().NoError(err)
	s.Equal("Runner", product.Name)
	s.Equal("Runner", stored.Name)
	s.Equal(3, stored.StockQuantity)
}

func (s *ProductServiceTestSuite) TestUpdateProductNegativeStock() {
	stock := -1
	s.products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(&model.Product{ID: "p1", UserID: "seller-1", Name: "Shoe", Images: []string{cdnURL("a.png")}}, nil)

	_, err := s.svc.UpdateProduct(context.Background(), "seller-1", ProductUpdateInput{ProductID: "p1", StockQuantity: &stock})
	s.ErrorIs(err, ErrInvalidData)
}

func (s *ProductServiceTestSuite) TestUpdateProductMustKeepImage() {
	existing := &model.Product{ID: "p1", UserID: "seller-1", Name: "Shoe", Images: []string{cdnURL("only.png")}}
	s.products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(existing, nil)

	_, err := s.svc.UpdateProduct(context.Background(), "seller-1", ProductUpdateInput{
		ProductID:      "p1",
		ImagesToDelete: []string{cdnURL("only.png")},
	})
	s.ErrorIs(err, ErrInvalidData)
}

func (s *ProductServiceTestSuite) TestUpdateProductOfAnotherSeller() {
	s.products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(&model.Product{ID: "p1", UserID: "seller-2"}, nil)

	_, err := s.svc.UpdateProduct(context.Background(), "seller-1", ProductUpdateInput{ProductID: "p1"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceTestSuite) TestDeleteProduct() {
	existing := &model.Product{ID: "p1", UserID: "seller-1", Images: []string{cdnURL("a.png")}}
	s.products.EXPECT().GetProductByID(gomock.Any(), "p1").Return(existing, nil)
	s.media.EXPECT().Destroy(gomock.Any(), cdnURL("a.png"), media.KindImage).Return(errors.New("cdn down"))
	s.products.EXPECT().DeleteProduct(gomock.Any(), "p1").Return(nil)

	s.NoError(s.svc.DeleteProduct(context.Background(), "seller-1", "p1"))
}

func (s *ProductServiceTestSuite) TestGetProductNotFound() {
	s.products.EXPECT().GetProductByID(gomock.Any(), "missing").Return(nil, repository.ErrProductNotFound)

	_, err := s.svc.GetProduct(context.Background(), "missing")
	s.ErrorIs(err, ErrNotFound)
}

func TestListSellerProductsTrimsSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := mock_repository.NewMockIProductRepository(ctrl)
	products.EXPECT().ListProducts(gomock.Any(), model.ProductFilter{SellerID: "seller-1", Search: "shoe"}).Return([]model.Product{{ID: "p1"}}, nil)

	svc := NewProductService(products, nil)
	list, err := svc.ListSellerProducts(context.Background(), "seller-1", "  shoe ")
	require.NoError(t, err)
	require.Len(t, list, 1)
}
