package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"meloon/internal/log"
)

type contextKey string

const ownerKey contextKey = "owner_id"

// WithOwner stores the authenticated owner id.
func WithOwner(ctx context.Context, owner int64) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerFromContext returns the owner id set by Middleware.
func OwnerFromContext(ctx context.Context) (int64, bool) {
	owner, ok := ctx.Value(ownerKey).(int64)
	return owner, ok && owner > 0
}

// TokenFromRequest reads a bearer token from the Authorization header, or
// from the token query parameter for downloads that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Middleware rejects requests without a valid token through onUnauthorized
// and otherwise puts the owner id into the request context.
func Middleware(secret, issuer string, onUnauthorized func(http.ResponseWriter, *http.Request, string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				onUnauthorized(w, r, "missing bearer token")
				return
			}
			claims, err := ParseToken(secret, issuer, tokenStr)
			if err != nil {
				slog.DebugContext(r.Context(), "Token rejected",
					log.FieldComponent, log.ComponentAuth,
					log.FieldError, err)
				onUnauthorized(w, r, "invalid or expired token")
				return
			}

			ctx := WithOwner(r.Context(), claims.UserID)
			ctx = log.WithContext(ctx, log.FromContext(ctx).With(log.FieldOwnerID, claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
