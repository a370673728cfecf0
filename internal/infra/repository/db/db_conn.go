package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func GetDSN(dbname, host, port, user, pas string) string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, pas, host, port, dbname)
}

// 給 golang-migrate 使用的連線字串
func GetMigrateURL(dbname, host, port, user, pas string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", user, pas, host, port, dbname)
}

func GetDbConn(dbname, host, port, user, pas string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(GetDSN(dbname, host, port, user, pas)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
