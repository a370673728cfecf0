package redis_repo

import (
	"context"
	"os"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	testRedisAddr     = "localhost:6379"
	testRedisPassword = "password"
)

type CartRepoTestSuite struct {
	suite.Suite
	cartRepo *CartRepo
}

func setupTestRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     testRedisAddr,
		Password: testRedisPassword,
		DB:       1, // 用測試DB
	})
}

func (suite *CartRepoTestSuite) SetupTest() {
	rdb := setupTestRedis()
	rdb.FlushDB(context.Background())
	suite.cartRepo = NewCartRepo(rdb)
}

func TestCartRepoTestSuite(t *testing.T) {
	if os.Getenv("STOREFRONT_INTEGRATION") == "" {
		t.Skip("set STOREFRONT_INTEGRATION to run redis integration tests")
	}
	suite.Run(t, new(CartRepoTestSuite))
}

func (suite *CartRepoTestSuite) TestReplaceAndGetCart() {
	ctx := context.Background()
	cart := &model.Cart{UserID: "u1", Items: map[string]int{"p1": 2, "p2": 3, "p3": 0}}
	assert.NoError(suite.T(), suite.cartRepo.Replace(ctx, cart))

	got, err := suite.cartRepo.Get(ctx, "u1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), map[string]int{"p1": 2, "p2": 3}, got.Items)
}

func (suite *CartRepoTestSuite) TestGetMissingCartIsEmpty() {
	got, err := suite.cartRepo.Get(context.Background(), "nobody")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), got.IsEmpty())
}

func (suite *CartRepoTestSuite) TestDelta() {
	ctx := context.Background()

	qty, err := suite.cartRepo.Delta(ctx, "u2", "p3", 5)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, qty)

	qty, err = suite.cartRepo.Delta(ctx, "u2", "p3", -2)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, qty)

	_, err = suite.cartRepo.Delta(ctx, "u2", "p3", -4)
	assert.ErrorIs(suite.T(), err, repository.ErrInsufficientQuantity)

	qty, err = suite.cartRepo.Delta(ctx, "u2", "p3", -3)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, qty)

	got, _ := suite.cartRepo.Get(ctx, "u2")
	assert.True(suite.T(), got.IsEmpty())
}

func (suite *CartRepoTestSuite) TestClear() {
	ctx := context.Background()
	suite.cartRepo.Replace(ctx, &model.Cart{UserID: "u3", Items: map[string]int{"p1": 1}})

	assert.NoError(suite.T(), suite.cartRepo.Clear(ctx, "u3"))
	got, _ := suite.cartRepo.Get(ctx, "u3")
	assert.True(suite.T(), got.IsEmpty())
}
