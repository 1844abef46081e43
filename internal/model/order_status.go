package model

import (
	"slices"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
)

type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

/*
狀態機:

	created    -> dispatched | cancelled
	dispatched -> delivered  | cancelled
	delivered, cancelled 為終止狀態
*/
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:    {OrderStatusDispatched, OrderStatusCancelled},
	OrderStatusDispatched: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusCreated, OrderStatusDispatched, OrderStatusDelivered, OrderStatusCancelled}
}

func (s OrderStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// AllowedNext 回傳可轉換的下一個狀態, 終止狀態或未知狀態回傳空 slice
func (s OrderStatus) AllowedNext() []OrderStatus {
	return slices.Clone(allowedTransitions[s])
}

func (s OrderStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(allowedTransitions[s], next)
}

// ValidateTransition 檢查 from -> to 是否合法
//
// 錯誤:
//   - errs.NoOpTransitionCode: 狀態相同
//   - errs.IllegalTransitionCode: 不在允許的轉換清單內
func ValidateTransition(from, to OrderStatus) error {
	if from == to {
		return errs.Newf(errs.NoOpTransitionCode, "Order is already in '%s' status.", to)
	}
	if !from.CanTransitionTo(to) {
		return errs.Newf(errs.IllegalTransitionCode, "Cannot change order status from '%s' to '%s'.", from, to)
	}
	return nil
}
