package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

type userCtxKey struct{}

// TokenVerifier turns a bearer token into the user it was issued to.
type TokenVerifier interface {
	VerifyBearer(ctx context.Context, token string) (user.User, error)
}

func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(user.User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u user.User) context.Context {
	ctx = context.WithValue(ctx, userCtxKey{}, u)
	return internal.ContextWithUserID(ctx, u.ID)
}

// BearerAuth rejects requests without a valid bearer token with 401 and
// stores the token's user in the request context.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeMessage(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}

			u, err := verifier.VerifyBearer(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.From(r.Context()).Debug("bearer token rejected", "error", err)
				writeMessage(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := ContextWithUser(r.Context(), u)
			ctx = logger.With(ctx, "user_id", u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
