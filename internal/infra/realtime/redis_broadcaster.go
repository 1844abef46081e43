package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultPublishQueueSize = 256
	publishTimeout          = 2 * time.Second
)

var (
	ErrBroadcasterClosed = errors.New("redis broadcaster closed")
	ErrPublishQueueFull  = errors.New("redis broadcaster publish queue full")
)

type broadcastMessage struct {
	Room  string                  `json:"room"`
	Event model.OrderUpdatedEvent `json:"event"`
}

/*
RedisBroadcaster 多個 instance 部署時使用
PublishToUser 只放進 queue, 由背景 goroutine 發佈到 redis channel
每個 instance 訂閱後轉送到自己的 hub
*/
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  zerolog.Logger

	queue       chan broadcastMessage
	stop        chan struct{}
	publishDone chan struct{}
	closeOnce   sync.Once

	mu     sync.Mutex
	closed bool
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBroadcaster(client *redis.Client, channel string, hub *Hub, logger zerolog.Logger) *RedisBroadcaster {
	if client == nil || hub == nil {
		panic("NewRedisBroadcaster: redis client and hub cannot be nil")
	}
	b := &RedisBroadcaster{
		client:      client,
		channel:     channel,
		hub:         hub,
		logger:      logger.With().Str("component", "redis_broadcaster").Str("channel", channel).Logger(),
		queue:       make(chan broadcastMessage, DefaultPublishQueueSize),
		stop:        make(chan struct{}),
		publishDone: make(chan struct{}),
	}
	go b.publishLoop()
	return b
}

var _ Notifier = (*RedisBroadcaster)(nil)

// PublishToUser 不 block, queue 滿時直接丟棄並回傳 ErrPublishQueueFull
func (b *RedisBroadcaster) PublishToUser(ctx context.Context, userID string, event model.OrderUpdatedEvent) error {
	select {
	case <-b.stop:
		return ErrBroadcasterClosed
	default:
	}

	select {
	case b.queue <- broadcastMessage{Room: userID, Event: event}:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

func (b *RedisBroadcaster) publishLoop() {
	defer close(b.publishDone)
	for {
		select {
		case <-b.stop:
			return
		case msg := <-b.queue:
			b.publish(msg)
		}
	}
}

func (b *RedisBroadcaster) publish(msg broadcastMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to encode broadcast message")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Warn().Err(err).Str("room", msg.Room).Str("order_id", msg.Event.OrderID).Msg("redis broadcast publish failed")
	}
}

// Start 訂閱成功後才回傳, 之後在背景轉送訊息直到 Close
func (b *RedisBroadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBroadcasterClosed
	}
	if b.pubsub != nil {
		return nil
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.pubsub = pubsub
	b.done = make(chan struct{})

	go b.forward(pubsub.Channel(), b.done)
	b.logger.Info().Msg("redis broadcaster subscribed")
	return nil
}

// StartWithRetry 以固定間隔重試 Start, 直到訂閱成功, ctx 結束或 Close
func (b *RedisBroadcaster) StartWithRetry(ctx context.Context, delay time.Duration) error {
	for attempt := 1; ; attempt++ {
		err := b.Start(ctx)
		if err == nil || errors.Is(err, ErrBroadcasterClosed) {
			return err
		}
		b.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("redis broadcaster subscribe failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.stop:
			return ErrBroadcasterClosed
		case <-time.After(delay):
		}
	}
}

func (b *RedisBroadcaster) forward(ch <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for msg := range ch {
		var bm broadcastMessage
		if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
			b.logger.Error().Err(err).Msg("invalid broadcast payload")
			continue
		}
		b.hub.Broadcast(bm.Room, orderUpdatedEnvelope(bm.Event))
	}
}

// Close 停止發佈與訂閱, 尚未送出的訊息直接丟棄
func (b *RedisBroadcaster) Close() error {
	b.closeOnce.Do(func() {
		close(b.stop)
		<-b.publishDone
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.pubsub == nil {
		return nil
	}
	err := b.pubsub.Close()
	<-b.done
	b.pubsub = nil
	return err
}
