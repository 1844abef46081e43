package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, hub *Hub, identity model.Identity) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ServeSession(hub, conn, NewSession(identity, 8), zerolog.Nop())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env map[string]any
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func waitRoomSize(t *testing.T, hub *Hub, room string, size int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.RoomSize(room) == size }, 2*time.Second, 10*time.Millisecond)
}

func TestSessionJoinOwnRoomAndReceive(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	identity := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	conn := startServer(t, hub, identity)
	room := identity.UserID.String()

	require.NoError(t, conn.WriteJSON(Envelope{Event: EventJoinRoom, Data: room}))
	env := readJSON(t, conn)
	require.Equal(t, EventJoinedRoom, env["event"])
	require.Equal(t, room, env["data"])

	hub.Broadcast(room, orderUpdatedEnvelope(model.OrderUpdatedEvent{UserID: room, OrderID: "o1", Status: model.OrderStatusDelivered}))
	env = readJSON(t, conn)
	require.Equal(t, EventOrderUpdated, env["event"])
	require.Equal(t, "o1", env["data"].(map[string]any)["orderId"])

	// 斷線後從 room 移除
	require.NoError(t, conn.Close())
	waitRoomSize(t, hub, room, 0)
}

func TestSessionCannotJoinOtherUsersRoom(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := startServer(t, hub, model.Identity{UserID: uuid.New(), Role: model.RoleUser})
	otherRoom := uuid.NewString()

	require.NoError(t, conn.WriteJSON(Envelope{Event: EventJoinRoom, Data: otherRoom}))
	env := readJSON(t, conn)
	require.Equal(t, EventError, env["event"])
	require.Equal(t, "You are not authorized to join this room.", env["data"].(map[string]any)["message"])
	require.Equal(t, 0, hub.RoomSize(otherRoom))
}

func TestSessionAdminMayJoinAnyRoom(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := startServer(t, hub, model.Identity{UserID: uuid.New(), Role: model.RoleAdmin})
	otherRoom := uuid.NewString()

	require.NoError(t, conn.WriteJSON(Envelope{Event: EventJoinRoom, Data: otherRoom}))
	env := readJSON(t, conn)
	require.Equal(t, EventJoinedRoom, env["event"])
	require.Equal(t, 1, hub.RoomSize(otherRoom))
}

func TestSessionUnknownAndMalformedMessages(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := startServer(t, hub, model.Identity{UserID: uuid.New(), Role: model.RoleUser})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	env := readJSON(t, conn)
	require.Equal(t, EventError, env["event"])

	require.NoError(t, conn.WriteJSON(Envelope{Event: "leaveRoom", Data: "x"}))
	env = readJSON(t, conn)
	require.Equal(t, "Unknown event.", env["data"].(map[string]any)["message"])
}
