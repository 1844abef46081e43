package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/RoyceAzure/lab/ordertracker/internal/metrics"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/rs/zerolog"
)

/*
Hub 管理本 process 內所有 session 與 room
room id 為 user id, 一個 session 可加入多個 room
推播只會放進 session 的 send buffer, buffer 滿了直接丟棄
*/
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]struct{}
	closed   bool
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

type HubOption func(*Hub)

func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

func NewHub(logger zerolog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]struct{}),
		logger:   logger.With().Str("component", "realtime_hub").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Notifier = (*Hub)(nil)

// Register hub 已關閉時回傳 false
func (h *Hub) Register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	if h.metrics != nil {
		h.metrics.RealtimeSessions.Inc()
	}
	return true
}

func (h *Hub) Join(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.rooms[room] = struct{}{}
}

// Leave 將 session 從所有 room 移除, 斷線時呼叫
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	for room := range s.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, s)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	s.rooms = make(map[string]struct{})
	delete(h.sessions, s)
	if h.metrics != nil {
		h.metrics.RealtimeSessions.Dec()
	}
}

// Broadcast 送給 room 內所有 session, 回傳成功放進 buffer 的數量
func (h *Hub) Broadcast(room string, env Envelope) int {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("event", env.Event).Msg("failed to encode realtime message")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.rooms[room] {
		if s.enqueue(data) {
			delivered++
			continue
		}
		if h.metrics != nil {
			h.metrics.RealtimeDropped.Inc()
		}
		h.logger.Warn().Str("room", room).Str("session_id", s.ID).Msg("realtime send buffer full, message dropped")
	}
	return delivered
}

func (h *Hub) PublishToUser(ctx context.Context, userID string, event model.OrderUpdatedEvent) error {
	h.Broadcast(userID, orderUpdatedEnvelope(event))
	return nil
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close 關閉所有 session, 之後的 Register 都會失敗
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.sessions {
		s.close()
	}
	// 之後的 Leave 找不到 session, 不會重複扣除
	if h.metrics != nil {
		h.metrics.RealtimeSessions.Sub(float64(len(h.sessions)))
	}
	h.sessions = make(map[*Session]struct{})
	h.rooms = make(map[string]map[*Session]struct{})
}
