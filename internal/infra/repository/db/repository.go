package db

import (
	"context"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
}

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetActiveProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	ListActiveProducts(ctx context.Context) ([]model.Product, error)
}

type IOrderRepository interface {
	CreateOrderWithStock(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (*model.Order, error)
}

var (
	_ IUserRepository    = (*UserRepo)(nil)
	_ IProductRepository = (*ProductRepo)(nil)
	_ IOrderRepository   = (*OrderRepo)(nil)
)
