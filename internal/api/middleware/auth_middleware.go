package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/google/uuid"
)

// AuthMiddleware 需要 AuthPayloadMiddleware 先解析出 payload
// 會重新載入用戶, 已刪除的用戶視為未認證
func AuthMiddleware(authService service.IAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := util.GetTokenPayloadFromContext[uuid.UUID](r.Context())
			if payload == nil {
				response.ErrorJSON(w, r, errs.New(errs.UnauthorizedCode, "Invalid or expired token."))
				return
			}

			identity, err := authService.IdentityFromPayload(r.Context(), payload)
			if err != nil {
				response.ErrorJSON(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(util.WithIdentity(r.Context(), identity)))
		})
	}
}
