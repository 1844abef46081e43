package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("order event producer is closed")

//go:generate mockgen -source=order_event_producer.go -destination=mock/mock_order_event_producer.go -package=mock_producer

// IOrderEventPublisher 訂單事件為 best-effort, 呼叫端只記錄錯誤
type IOrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event model.OrderEvent) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	MaxAttempts  int
}

// NewKafkaWriter 非同步模式, WriteMessages 不會等待 broker 回應
// 寫入結果由 Completion 回報, 失敗只記 log
func NewKafkaWriter(cfg Config, logger zerolog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error().Err(err).Int("messages", len(messages)).Msg("kafka order event delivery failed")
			}
		},

		// 錯誤處理
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf("kafka producer error: "+msg, args...)
		}),
	}
}

type OrderEventProducer struct {
	writer Writer
	closed atomic.Bool // 避免重複呼叫Close() 旗標
}

func NewOrderEventProducer(writer Writer) *OrderEventProducer {
	if writer == nil {
		panic("NewOrderEventProducer: writer cannot be nil")
	}
	return &OrderEventProducer{writer: writer}
}

var _ IOrderEventPublisher = (*OrderEventProducer)(nil)

// PublishOrderEvent key 為訂單 id, 同一筆訂單的事件落在同一個 partition
func (p *OrderEventProducer) PublishOrderEvent(ctx context.Context, event model.OrderEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}

func (p *OrderEventProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// NopPublisher 未設定 KAFKA_BROKERS 時使用
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
