package middleware

import (
	"net/http"

	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

// RequireRoles answers 403 unless the authenticated user holds one of roles.
// It must run after BearerAuth.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if !auth.IsAllowed(u.Role, roles...) {
				logger.From(r.Context()).Warn("access denied: role not allowed",
					"user_id", u.ID,
					"role", u.Role,
					"required_roles", roles)
				writeMessage(w, http.StatusForbidden, "Forbidden: insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
