package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem 下單當下的商品快照, 建立後不再變動
type OrderItem struct {
	ProductID     uuid.UUID       `json:"productId"`
	Name          string          `json:"name"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Quantity      int             `json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PurchasePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order 明細以 json document 形式內嵌在訂單內
type Order struct {
	ID              uuid.UUID       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          uuid.UUID       `gorm:"not null;type:uuid;index" json:"userId"`
	OrderItems      []OrderItem     `gorm:"not null;type:text;serializer:json" json:"orderItems"`
	TotalAmount     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"totalAmount"`
	ShippingAddress string          `gorm:"not null" json:"shippingAddress"`
	Status          OrderStatus     `gorm:"not null;type:varchar(20);index" json:"status"`
	BaseModel
}

// CalculateTotal 計算所有明細小計總和
func CalculateTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type CreateOrderItemModel struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1,max=10000"`
}

type CreateOrderModel struct {
	Items           []CreateOrderItemModel `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string                 `json:"shippingAddress" validate:"required,min=10"`
}

type UpdateOrderStatusModel struct {
	Status string `json:"status" validate:"required,order_status"`
}

type OrderListQuery struct {
	Page   int    `json:"page" validate:"min=1"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Status string `json:"status" validate:"omitempty,order_status"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}
