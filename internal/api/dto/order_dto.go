package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderDTO struct {
	Items           []CreateOrderItemDTO `json:"items"`
	ShippingAddress string               `json:"shippingAddress"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status"`
}

type OrderItemDTO struct {
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Quantity      int             `json:"quantity"`
}

type OrderDTO struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	OrderItems      []OrderItemDTO  `json:"orderItems"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type PaginationDTO struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// OrderListResponse 訂單列表, orders 沒有資料時為空陣列
type OrderListResponse struct {
	Orders     []OrderDTO    `json:"orders"`
	Pagination PaginationDTO `json:"pagination"`
}
