package db

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CheckoutRepoTestSuite struct {
	suite.Suite
	db           *gorm.DB
	productRepo  *ProductRepo
	orderRepo    *OrderRepo
	checkoutRepo *CheckoutRepo
}

func TestCheckoutRepoTestSuite(t *testing.T) {
	skipIfNoIntegration(t)
	suite.Run(t, new(CheckoutRepoTestSuite))
}

func (suite *CheckoutRepoTestSuite) SetupSuite() {
	db, err := GetDbConn("lab_storefront", "localhost", "5432", "royce", "password")
	require.NoError(suite.T(), err)

	dao := NewDbDao(db)
	require.NoError(suite.T(), dao.InitMigrate())
	suite.db = db
	suite.productRepo = NewProductRepo(dao)
	suite.orderRepo = NewOrderRepo(dao)
	suite.checkoutRepo = NewCheckoutRepo(dao)
}

func (suite *CheckoutRepoTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM products")
}

func (suite *CheckoutRepoTestSuite) TearDownSuite() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *CheckoutRepoTestSuite) createProduct(name string, offer int64, stock int) *model.Product {
	product := &model.Product{
		UserID:        "seller-1",
		Name:          name,
		Description:   "desc",
		Price:         decimal.NewFromInt(offer + 10),
		OfferPrice:    decimal.NewFromInt(offer),
		Images:        []string{"https://cdn.example.com/" + name + ".png"},
		StockQuantity: stock,
	}
	require.NoError(suite.T(), suite.productRepo.CreateProduct(context.Background(), product))
	require.NotEmpty(suite.T(), product.ID)
	return product
}

func (suite *CheckoutRepoTestSuite) TestPlaceOrder_DeductsStock() {
	ctx := context.Background()
	a := suite.createProduct("A", 100, 5)
	b := suite.createProduct("B", 50, 1)

	order := &model.Order{
		UserID:        "buyer-1",
		AddressID:     "addr-1",
		Amount:        255,
		Status:        model.OrderStatusPlaced,
		PaymentStatus: model.PaymentStatusPending,
		Items: []model.OrderItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
	}
	require.NoError(suite.T(), suite.checkoutRepo.PlaceOrder(ctx, order))

	gotA, err := suite.productRepo.GetProductByID(ctx, a.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, gotA.StockQuantity)

	gotB, err := suite.productRepo.GetProductByID(ctx, b.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, gotB.StockQuantity)

	saved, err := suite.orderRepo.GetOrderByID(ctx, order.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(255), saved.Amount)
	require.Len(suite.T(), saved.Items, 2)
}

func (suite *CheckoutRepoTestSuite) TestPlaceOrder_InsufficientStockRollsBack() {
	ctx := context.Background()
	a := suite.createProduct("A", 100, 5)
	b := suite.createProduct("B", 50, 1)

	order := &model.Order{
		UserID:    "buyer-1",
		AddressID: "addr-1",
		Amount:    306,
		Items: []model.OrderItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
		},
	}
	err := suite.checkoutRepo.PlaceOrder(ctx, order)
	require.ErrorIs(suite.T(), err, repository.ErrProductStockNotEnough)

	gotA, err := suite.productRepo.GetProductByID(ctx, a.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5, gotA.StockQuantity)

	orders, err := suite.orderRepo.GetOrdersByUserID(ctx, "buyer-1")
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), orders)
}

// 項目順序相反的訂單同時扣減, 不應互相 deadlock
func (suite *CheckoutRepoTestSuite) TestPlaceOrder_CrossedItemOrder() {
	ctx := context.Background()
	a := suite.createProduct("A", 100, 20)
	b := suite.createProduct("B", 50, 20)

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		items := []model.OrderItem{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}}
		if i%2 == 1 {
			items[0], items[1] = items[1], items[0]
		}
		g.Go(func() error {
			return suite.checkoutRepo.PlaceOrder(ctx, &model.Order{
				UserID: "buyer-1", AddressID: "addr-1", Amount: 153, Items: items,
			})
		})
	}
	require.NoError(suite.T(), g.Wait())

	gotA, err := suite.productRepo.GetProductByID(ctx, a.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 10, gotA.StockQuantity)
	gotB, err := suite.productRepo.GetProductByID(ctx, b.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 10, gotB.StockQuantity)
}

func (suite *CheckoutRepoTestSuite) TestSellerOrdersAndStatusUpdate() {
	ctx := context.Background()
	a := suite.createProduct("A", 100, 5)

	order := &model.Order{UserID: "buyer-1", AddressID: "addr-1", Amount: 102,
		Items: []model.OrderItem{{ProductID: a.ID, Quantity: 1}}}
	require.NoError(suite.T(), suite.checkoutRepo.PlaceOrder(ctx, order))

	orders, err := suite.orderRepo.GetOrdersByProductIDs(ctx, []string{a.ID})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)

	status := model.OrderStatusCancelled
	reason := "out of region"
	updated, err := suite.orderRepo.UpdateOrderStatus(ctx, order.ID, model.OrderStatusUpdate{
		Status:             &status,
		CancellationReason: &reason,
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusCancelled, updated.Status)
	require.Equal(suite.T(), reason, updated.CancellationReason)

	_, err = suite.orderRepo.UpdateOrderStatus(ctx, "missing", model.OrderStatusUpdate{Status: &status})
	require.ErrorIs(suite.T(), err, repository.ErrOrderNotFound)
}
