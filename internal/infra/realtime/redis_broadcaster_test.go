package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRedisBroadcasterFansOutToEveryHub(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	newInstance := func() (*Hub, *RedisBroadcaster) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		hub := NewHub(zerolog.Nop())
		b := NewRedisBroadcaster(client, constants.RealtimeChannel, hub, zerolog.Nop())
		require.NoError(t, b.Start(ctx))
		t.Cleanup(func() { _ = b.Close() })
		return hub, b
	}

	hubA, publisher := newInstance()
	hubB, _ := newInstance()

	identity := newIdentity(model.RoleUser)
	room := identity.UserID.String()
	sA := NewSession(identity, 4)
	sB := NewSession(identity, 4)
	hubA.Register(sA)
	hubA.Join(sA, room)
	hubB.Register(sB)
	hubB.Join(sB, room)

	event := model.OrderUpdatedEvent{UserID: room, OrderID: "o-1", Status: model.OrderStatusCancelled, UpdatedAt: time.Now()}
	require.NoError(t, publisher.PublishToUser(ctx, room, event))

	for _, s := range []*Session{sA, sB} {
		env := readEnvelope(t, s)
		require.Equal(t, EventOrderUpdated, env["event"])
		require.Equal(t, "cancelled", env["data"].(map[string]any)["status"])
	}
}

func TestRedisBroadcasterCloseIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	b := NewRedisBroadcaster(client, constants.RealtimeChannel, NewHub(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	require.ErrorIs(t, b.Start(context.Background()), ErrBroadcasterClosed)
	err := b.PublishToUser(context.Background(), "u1", model.OrderUpdatedEvent{UserID: "u1"})
	require.ErrorIs(t, err, ErrBroadcasterClosed)
}

func TestRedisBroadcasterRetriesSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	hub := NewHub(zerolog.Nop())
	b := NewRedisBroadcaster(client, constants.RealtimeChannel, hub, zerolog.Nop())
	defer b.Close()

	// 第一次訂閱時 redis 尚未啟動
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.StartWithRetry(ctx, 20*time.Millisecond)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, mr.Restart())
	require.NoError(t, <-errCh)
	require.Len(t, mr.PubSubChannels(""), 1)

	identity := newIdentity(model.RoleUser)
	room := identity.UserID.String()
	s := NewSession(identity, 4)
	hub.Register(s)
	hub.Join(s, room)

	event := model.OrderUpdatedEvent{UserID: room, OrderID: "o-1", Status: model.OrderStatusDispatched, UpdatedAt: time.Now()}
	require.NoError(t, b.PublishToUser(context.Background(), room, event))
	env := readEnvelope(t, s)
	require.Equal(t, EventOrderUpdated, env["event"])
}

func TestRedisBroadcasterStartWithRetryStopsOnClose(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	b := NewRedisBroadcaster(client, constants.RealtimeChannel, NewHub(zerolog.Nop()), zerolog.Nop())
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.StartWithRetry(context.Background(), 20*time.Millisecond)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, b.Close())
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrBroadcasterClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not stop")
	}
}

func TestRedisBroadcasterPublishDoesNotBlock(t *testing.T) {
	// 沒有 publish goroutine 消化 queue
	b := &RedisBroadcaster{
		queue: make(chan broadcastMessage, 1),
		stop:  make(chan struct{}),
	}
	event := model.OrderUpdatedEvent{UserID: "u1", OrderID: "o-1"}

	require.NoError(t, b.PublishToUser(context.Background(), "u1", event))
	require.ErrorIs(t, b.PublishToUser(context.Background(), "u1", event), ErrPublishQueueFull)
}
