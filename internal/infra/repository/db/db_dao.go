package db

import (
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// 初始化db schema, 測試使用
// 冪等性
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	)
}

func (d *DbDao) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunDBMigration 正式環境使用 migration 檔案
// migrationURL ex: file://internal/infra/repository/db/migration
func RunDBMigration(migrationURL string, dbSource string) error {
	m, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// NewStore 組出 postgres 版本的 repository
func NewStore(dao *DbDao) *repository.Store {
	return repository.NewStore(
		NewProductRepo(dao),
		NewOrderRepo(dao),
		NewCheckoutRepo(dao),
		NewUserRepo(dao),
		NewAddressRepo(dao),
		dao.Close,
	)
}
