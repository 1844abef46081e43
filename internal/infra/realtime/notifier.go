package realtime

import (
	"context"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
)

// 事件名稱
const (
	EventJoinRoom     = "joinRoom"
	EventJoinedRoom   = "joinedRoom"
	EventOrderUpdated = "orderUpdated"
	EventError        = "error"
)

//go:generate mockgen -source=notifier.go -destination=mock/mock_notifier.go -package=mock_realtime

// Notifier 推播訂單狀態變更給訂單擁有者的 room
// 實作不可 block 呼叫端, 無人訂閱時直接忽略
type Notifier interface {
	PublishToUser(ctx context.Context, userID string, event model.OrderUpdatedEvent) error
}

type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func orderUpdatedEnvelope(event model.OrderUpdatedEvent) Envelope {
	return Envelope{Event: EventOrderUpdated, Data: event}
}
