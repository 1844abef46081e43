package api

import "github.com/RoyceAzure/lab/ordertracker/internal/api/handler"

type Server struct {
	AuthHandler     *handler.AuthHandler
	ProductHandler  *handler.ProductHandler
	OrderHandler    *handler.OrderHandler
	RealtimeHandler *handler.RealtimeHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	realtimeHandler *handler.RealtimeHandler,
) *Server {
	return &Server{
		AuthHandler:     authHandler,
		ProductHandler:  productHandler,
		OrderHandler:    orderHandler,
		RealtimeHandler: realtimeHandler,
	}
}
