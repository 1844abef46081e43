package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	DefaultSendBuffer = 64
)

type Session struct {
	ID       string
	Identity model.Identity

	send   chan []byte
	rooms  map[string]struct{} // 由 hub.mu 保護
	mu     sync.Mutex
	closed bool
}

func NewSession(identity model.Identity, bufferSize int) *Session {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	return &Session{
		ID:       uuid.NewString(),
		Identity: identity,
		send:     make(chan []byte, bufferSize),
		rooms:    make(map[string]struct{}),
	}
}

// enqueue 不 block, buffer 滿或已關閉時回傳 false
func (s *Session) enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// Send 直接回覆給此 session
func (s *Session) Send(env Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		return false
	}
	return s.enqueue(data)
}

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

/*
ServeSession 接手已升級的 websocket 連線, block 到連線結束
read loop 結束即視為斷線, 從所有 room 移除
*/
func ServeSession(hub *Hub, conn *websocket.Conn, s *Session, logger zerolog.Logger) {
	logger = logger.With().Str("session_id", s.ID).Str("user_id", s.Identity.UserID.String()).Logger()
	if !hub.Register(s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	logger.Info().Msg("realtime session connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, s)
	}()

	readPump(hub, conn, s, logger)

	hub.Leave(s)
	s.close()
	<-done
	logger.Info().Msg("realtime session disconnected")
}

func readPump(hub *Hub, conn *websocket.Conn, s *Session, logger zerolog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("realtime session read failed")
			}
			return
		}
		handleInbound(hub, s, raw, logger)
	}
}

func handleInbound(hub *Hub, s *Session, raw []byte, logger zerolog.Logger) {
	var msg inboundEnvelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.Send(Envelope{Event: EventError, Data: ErrorPayload{Message: "Invalid message format."}})
		return
	}

	switch msg.Event {
	case EventJoinRoom:
		var room string
		if err := json.Unmarshal(msg.Data, &room); err != nil || room == "" {
			s.Send(Envelope{Event: EventError, Data: ErrorPayload{Message: "Room id is required."}})
			return
		}
		// 一般用戶只能加入自己的 room
		if !s.Identity.IsAdmin() && room != s.Identity.UserID.String() {
			logger.Warn().Str("room", room).Msg("realtime join rejected")
			s.Send(Envelope{Event: EventError, Data: ErrorPayload{Message: "You are not authorized to join this room."}})
			return
		}
		hub.Join(s, room)
		s.Send(Envelope{Event: EventJoinedRoom, Data: room})
	default:
		s.Send(Envelope{Event: EventError, Data: ErrorPayload{Message: "Unknown event."}})
	}
}

func writePump(conn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
