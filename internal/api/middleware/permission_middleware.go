package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/config"
	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
)

// RequirePermission 依角色權限設定檢查, 必須掛在 AuthMiddleware 之後
func RequirePermission(policy *config.PermissionConfig, perm constants.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := util.GetIdentityFromContext(r.Context())
			if !ok {
				response.ErrorJSON(w, r, errs.New(errs.UnauthorizedCode, "Invalid or expired token."))
				return
			}
			if !policy.HasPermission(identity.Role, perm) {
				response.ErrorJSON(w, r, errs.New(errs.ForbiddenCode, "You do not have permission to perform this action."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
