package middleware

import (
	"net"
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/rs/zerolog"
)

// NewRateLimitMiddleware 已登入以 user id 計算, 否則以來源 ip
// redis 失敗時放行
func NewRateLimitMiddleware(limiter ratelimit.ILimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), rateLimitKey(r))
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable, request allowed")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				response.ErrorJSON(w, r, errs.New(errs.TooManyRequestsCode, "Too many requests. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if identity, ok := util.GetIdentityFromContext(r.Context()); ok {
		return "user:" + identity.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
