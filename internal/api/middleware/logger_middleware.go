package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/RoyceAzure/rj/api/token"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func getRequestID(r *http.Request) string {
	if requestId := util.GetRequestIDFromContext(r.Context()); requestId != "" {
		return requestId
	}
	return "unknown"
}

func getPayload(r *http.Request) *token.Payload[uuid.UUID] {
	payload := util.GetTokenPayloadFromContext[uuid.UUID](r.Context())
	if payload == nil {
		return &token.Payload[uuid.UUID]{
			UPN:    "unknown",
			UserId: uuid.Nil,
		}
	}
	return payload
}

// 記錄request 請求, 並把帶有 request id 的 logger 放進 context 供後續使用
func LoggerMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().Str("request_id", getRequestID(r)).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			payload := getPayload(r)
			reqLogger.Info().
				Str("upn", payload.UPN).
				Str("user_id", payload.UserId.String()).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", statusOf(ww)).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}

// statusOf handler 沒有呼叫 WriteHeader 時視為 200
func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
