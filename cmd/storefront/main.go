package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// @title storefront
// @version 1.0
// @description 電商前台與賣家後台 API

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        Authorization
// @description                 Description for Authorization header: Type "Bearer" followed by a space and the token. Example: "Bearer {token}"

func main() {
	// 價格以數字輸出
	decimal.MarshalJSONWithoutQuotes = true

	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("init application failed")
		return
	}

	// 初始化 handler
	server := api.NewServer(
		handler.NewProductHandler(app.ProductService),
		handler.NewOrderHandler(app.OrderService, app.SellerOrderService, app.PaymentService),
		handler.NewUserHandler(app.UserService, app.AddressService),
		handler.NewCartHandler(app.CartService),
	)

	// 設置路由
	r := router.SetupRouter(server, router.Options{
		Verifier: app.TokenVerifier,
		Sellers:  app.SellerConfig,
		Limiter:  app.Limiter,
		Metrics:  app.Metrics,
		Logger:   &app.Logger.Logger,
	})

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDonwCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Application shutdown error")
		}

		shutDonwCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	<-shutDonwCompleted
	fmt.Println("closed completed")
}
