package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/ordertracker/internal/config"
	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestIdMiddleware(t *testing.T) {
	var seen string
	h := RequestIdMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = util.GetRequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(rec, req)
	require.Equal(t, "req-1", seen)
	require.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(config.DefaultPermissionConfig(), constants.PermProductsCreate)(okHandler)

	testCases := []struct {
		name     string
		identity *model.Identity
		status   int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "user", identity: &model.Identity{UserID: uuid.New(), Role: model.RoleUser}, status: http.StatusForbidden},
		{name: "admin", identity: &model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}, status: http.StatusNoContent},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/products", nil)
			if tc.identity != nil {
				req = req.WithContext(util.WithIdentity(req.Context(), *tc.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRateLimitMiddlewarePerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	limiter := ratelimit.NewRsTokenBucket(client, &ratelimit.LimiterConfig{Prefix: "test", Capacity: 2, RatePS: 1})
	h := NewRateLimitMiddleware(limiter)(okHandler)

	call := func(identity model.Identity) int {
		req := httptest.NewRequest(http.MethodPost, "/api/user/orders", nil)
		req = req.WithContext(util.WithIdentity(req.Context(), identity))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	alice := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	bob := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	require.Equal(t, http.StatusNoContent, call(alice))
	require.Equal(t, http.StatusNoContent, call(alice))
	require.Equal(t, http.StatusTooManyRequests, call(alice))
	require.Equal(t, http.StatusNoContent, call(bob))

	// redis 無法連線時放行
	mr.Close()
	require.Equal(t, http.StatusNoContent, call(alice))
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	require.Equal(t, "ip:10.0.0.1", rateLimitKey(req))

	id := uuid.New()
	req = req.WithContext(util.WithIdentity(req.Context(), model.Identity{UserID: id}))
	require.Equal(t, "user:"+id.String(), rateLimitKey(req))
}
