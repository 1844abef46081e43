package handler

import (
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/realtime"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type RealtimeHandler struct {
	authService service.IAuthService
	hub         *realtime.Hub
	upgrader    websocket.Upgrader
	sendBuffer  int
	logger      zerolog.Logger
}

func NewRealtimeHandler(authService service.IAuthService, hub *realtime.Hub, logger zerolog.Logger) *RealtimeHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	if hub == nil {
		panic("hub cannot be nil")
	}
	return &RealtimeHandler{
		authService: authService,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 前端與 api 可能不同網域
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendBuffer: realtime.DefaultSendBuffer,
		logger:     logger.With().Str("handler", "realtime").Logger(),
	}
}

// ServeWS GET /ws
// 升級前驗證 token, 失敗回 401 不升級
func (h *RealtimeHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	accessToken := handshakeToken(r)
	if accessToken == "" {
		response.ErrorJSON(w, r, errs.New(errs.UnauthorizedCode, "Invalid or expired token."))
		return
	}

	identity, err := h.authService.Authenticate(r.Context(), accessToken)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已自行回覆錯誤
		h.logger.Warn().Err(err).Str("user_id", identity.UserID.String()).Msg("websocket upgrade failed")
		return
	}

	realtime.ServeSession(h.hub, conn, realtime.NewSession(identity, h.sendBuffer), h.logger)
}

// handshakeToken 瀏覽器的 websocket 無法帶 header, 允許用 query string 傳 token
func handshakeToken(r *http.Request) string {
	fields := strings.Fields(r.Header.Get(string(constants.AuthorizationHeaderKey)))
	if len(fields) == 2 && strings.ToLower(fields[0]) == string(constants.AuthorizationTypeBearer) {
		return fields[1]
	}
	return strings.TrimSpace(r.URL.Query().Get(constants.TokenQueryKey))
}
