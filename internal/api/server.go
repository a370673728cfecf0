package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	ProductHandler *handler.ProductHandler
	OrderHandler   *handler.OrderHandler
	UserHandler    *handler.UserHandler
	CartHandler    *handler.CartHandler
}

func NewServer(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	userHandler *handler.UserHandler,
	cartHandler *handler.CartHandler,
) *Server {
	return &Server{
		ProductHandler: productHandler,
		OrderHandler:   orderHandler,
		UserHandler:    userHandler,
		CartHandler:    cartHandler,
	}
}
