package middleware

import (
	"context"
	"net/http"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/http/response"
	"github.com/rsommers/lakehouse/internal/platform/auth"
	"github.com/rsommers/lakehouse/pkg/logger"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// RequireAuth verifies the session token in the Authorization header and
// stores the caller's identity in the request context.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				response.WriteError(w, http.StatusUnauthorized, "No token, authorization denied", response.CodeUnauthorized)
				return
			}

			claims, err := auth.ParseSession(raw, jwtSecret)
			if err != nil {
				if auth.IsExpired(err) {
					response.WriteError(w, http.StatusUnauthorized, "Token expired", response.CodeExpiredToken)
					return
				}
				response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
				return
			}

			ident := domain.Identity{
				UserID:  claims.Sub,
				Email:   claims.Email,
				IsAdmin: claims.IsAdmin,
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, ident)
			ctx = context.WithValue(ctx, logger.UserIDKey, ident.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose verified identity lacks the admin flag.
// Must run inside RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := IdentityFrom(r)
		if !ok || !ident.IsAdmin {
			response.Forbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IdentityFrom(r *http.Request) (domain.Identity, bool) {
	ident, ok := r.Context().Value(ctxIdentity).(domain.Identity)
	return ident, ok
}
