package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cupcakery/storefront/pkg/auth"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/response"
	"github.com/cupcakery/storefront/pkg/session"
)

// SessionUserKey is the session key holding the logged-in user id.
const SessionUserKey = "_auth_user_id"

// IdentityResolver loads the current role for a user id. It returns
// ok=false when the user no longer exists.
type IdentityResolver func(ctx context.Context, userID uint) (auth.Identity, bool, error)

// Authenticate attaches an auth.Identity to the request when the session holds
// a user id or the request carries a valid Bearer token. Anonymous requests
// pass through untouched; use RequireAuth to reject them.
func Authenticate(resolve IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := userIDFromRequest(r)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			id, ok, err := resolve(r.Context(), userID)
			if err != nil {
				logger.WithCtx(r.Context()).Error("auth: resolve identity", "user_id", userID, "error", err)
				response.InternalError(w)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func userIDFromRequest(r *http.Request) uint {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return 0
		}
		return claims.UserID()
	}

	if n, ok := session.FromCtx(r).GetInt(SessionUserKey); ok && n > 0 {
		return uint(n)
	}
	return 0
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromCtx(r.Context()); !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
