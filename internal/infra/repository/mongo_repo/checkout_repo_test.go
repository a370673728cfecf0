package mongo_repo

import (
	"context"
	"os"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
)

const testMongoURI = "mongodb://localhost:27017"

type CheckoutRepoTestSuite struct {
	suite.Suite
	client       *mongo.Client
	db           *mongo.Database
	productRepo  *ProductRepo
	orderRepo    *OrderRepo
	checkoutRepo *CheckoutRepo
}

func TestCheckoutRepoTestSuite(t *testing.T) {
	if os.Getenv("STOREFRONT_INTEGRATION") == "" {
		t.Skip("set STOREFRONT_INTEGRATION to run mongo integration tests")
	}
	suite.Run(t, new(CheckoutRepoTestSuite))
}

func (suite *CheckoutRepoTestSuite) SetupSuite() {
	client, err := GetMongoClient(context.Background(), testMongoURI)
	require.NoError(suite.T(), err)

	suite.client = client
	suite.db = client.Database("storefront_test")
	require.NoError(suite.T(), EnsureIndexes(context.Background(), suite.db))
	suite.productRepo = NewProductRepo(suite.db)
	suite.orderRepo = NewOrderRepo(suite.db)
	suite.checkoutRepo = NewCheckoutRepo(client, suite.db, false)
}

func (suite *CheckoutRepoTestSuite) SetupTest() {
	ctx := context.Background()
	suite.db.Collection(productCollection).Drop(ctx)
	suite.db.Collection(orderCollection).Drop(ctx)
}

func (suite *CheckoutRepoTestSuite) TearDownSuite() {
	suite.client.Disconnect(context.Background())
}

func (suite *CheckoutRepoTestSuite) createProduct(offer int64, stock int) *model.Product {
	product := &model.Product{
		UserID:        "seller-1",
		Name:          "P",
		OfferPrice:    decimal.NewFromInt(offer),
		Price:         decimal.NewFromInt(offer),
		Images:        []string{"x"},
		StockQuantity: stock,
	}
	require.NoError(suite.T(), suite.productRepo.CreateProduct(context.Background(), product))
	return product
}

func (suite *CheckoutRepoTestSuite) TestPlaceOrder_DeductsStock() {
	ctx := context.Background()
	a := suite.createProduct(100, 5)
	b := suite.createProduct(50, 1)

	order := &model.Order{UserID: "buyer-1", AddressID: "addr-1", Amount: 255,
		Status: model.OrderStatusPlaced, PaymentStatus: model.PaymentStatusPending,
		Items: []model.OrderItem{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 1}}}
	require.NoError(suite.T(), suite.checkoutRepo.PlaceOrder(ctx, order))

	gotA, _ := suite.productRepo.GetProductByID(ctx, a.ID)
	gotB, _ := suite.productRepo.GetProductByID(ctx, b.ID)
	require.Equal(suite.T(), 3, gotA.StockQuantity)
	require.Equal(suite.T(), 0, gotB.StockQuantity)

	orders, err := suite.orderRepo.GetOrdersByProductIDs(ctx, []string{b.ID})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)
}

func (suite *CheckoutRepoTestSuite) TestPlaceOrder_CompensatesOnShortage() {
	ctx := context.Background()
	a := suite.createProduct(100, 5)
	b := suite.createProduct(50, 1)

	order := &model.Order{UserID: "buyer-1", AddressID: "addr-1",
		Items: []model.OrderItem{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 2}}}
	err := suite.checkoutRepo.PlaceOrder(ctx, order)
	require.ErrorIs(suite.T(), err, repository.ErrProductStockNotEnough)

	gotA, _ := suite.productRepo.GetProductByID(ctx, a.ID)
	gotB, _ := suite.productRepo.GetProductByID(ctx, b.ID)
	require.Equal(suite.T(), 5, gotA.StockQuantity)
	require.Equal(suite.T(), 1, gotB.StockQuantity)

	orders, err := suite.orderRepo.GetOrdersByUserID(ctx, "buyer-1")
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), orders)
}
