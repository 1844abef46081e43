package producer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

const logWriteTimeout = 5 * time.Second

// KafkaLogWriter 讓 zerolog 把每一筆 log 送到 kafka, 由下游收集
// 沒有 key, 由 balancer 平均分配 partition
type KafkaLogWriter struct {
	w      Writer
	closed atomic.Bool
}

func NewKafkaLogWriter(w Writer) *KafkaLogWriter {
	if w == nil {
		panic("NewKafkaLogWriter: writer cannot be nil")
	}
	return &KafkaLogWriter{w: w}
}

func (kw *KafkaLogWriter) Write(p []byte) (int, error) {
	if kw.closed.Load() {
		return 0, ErrProducerClosed
	}

	// zerolog 會重用 buffer, 必須複製
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()
	if err := kw.w.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (kw *KafkaLogWriter) Close() error {
	if !kw.closed.CompareAndSwap(false, true) {
		return nil
	}
	return kw.w.Close()
}
