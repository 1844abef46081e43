package router

import (
	"context"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/api"
	m "github.com/RoyceAzure/lab/ordertracker/internal/api/middleware"
	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/config"
	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/ordertracker/internal/metrics"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
	"github.com/RoyceAzure/rj/api/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	TokenMaker  token.Maker[uuid.UUID]
	AuthService service.IAuthService
	Permissions *config.PermissionConfig
	Limiter     ratelimit.ILimiter
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	// Cache 為 nil 時 /readyz 不檢查 redis
	Cache cache.Cache
}

const readyTimeout = 2 * time.Second

func SetupRouter(server *api.Server, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(m.AuthPayloadMiddleware(deps.TokenMaker))
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(deps.Logger))
	r.Use(m.RecoverMiddleware)
	r.Use(m.MetricsMiddleware(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, r, http.StatusOK, "ok", nil)
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if _, err := deps.Cache.Ping(ctx); err != nil {
				response.ErrorJSON(w, r, errs.Wrap(errs.UnavailableCode, err, "Cache is unavailable."))
				return
			}
		}
		response.SuccessJSON(w, r, http.StatusOK, "ready", nil)
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	r.Get("/ws", server.RealtimeHandler.ServeWS)

	authed := m.AuthMiddleware(deps.AuthService)
	allow := func(perm constants.Permission) func(http.Handler) http.Handler {
		return m.RequirePermission(deps.Permissions, perm)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", server.AuthHandler.Register)
			r.Post("/login", server.AuthHandler.Login)
		})

		r.Get("/products", server.ProductHandler.ListProducts)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authed)
			r.With(allow(constants.PermProductsCreate)).Post("/products", server.ProductHandler.CreateProduct)
		})

		r.Route("/user/orders", func(r chi.Router) {
			r.Use(authed)
			r.With(allow(constants.PermOrdersCreate), m.NewRateLimitMiddleware(deps.Limiter)).Post("/", server.OrderHandler.CreateOrder)
			r.With(allow(constants.PermOrdersRead)).Get("/", server.OrderHandler.ListOrders)
			r.With(allow(constants.PermOrdersRead)).Get("/{id}", server.OrderHandler.GetOrder)
			r.With(allow(constants.PermOrdersUpdateStatus)).Patch("/{id}/status", server.OrderHandler.UpdateOrderStatus)
		})
	})

	return r
}
