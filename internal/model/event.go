package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderUpdatedEvent 推送到使用者 room 的 realtime 事件
type OrderUpdatedEvent struct {
	UserID    string      `json:"userId"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent 寫入 order event stream 的訊息
type OrderEvent struct {
	Type           OrderEventType  `json:"type"`
	OrderID        string          `json:"orderId"`
	UserID         string          `json:"userId"`
	Status         OrderStatus     `json:"status"`
	PreviousStatus OrderStatus     `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

func NewOrderCreatedEvent(order *Order) OrderEvent {
	return OrderEvent{
		Type:        OrderEventCreated,
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.CreatedAt,
	}
}

func NewOrderStatusChangedEvent(order *Order, previous OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           OrderEventStatusChanged,
		OrderID:        order.ID.String(),
		UserID:         order.UserID.String(),
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		OccurredAt:     order.UpdatedAt,
	}
}
