package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/user"
)

type userKey struct{}
type tokenKey struct{}

// UserResolver maps a bearer token to its user.
type UserResolver interface {
	Resolve(ctx context.Context, token string) (*user.User, error)
}

// Auditor records access control events.
type Auditor interface {
	Append(ctx context.Context, event *audit.Event) error
}

// UserFromContext returns the authenticated user, if present.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey{}).(*user.User)
	return u, ok
}

// TokenFromContext returns the raw bearer token, if present.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			u, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, u)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-ADMIN users and records the denial in the
// audit trail.
func RequireAdmin(auditor Auditor, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if u.Role != user.RoleAdmin {
				if auditor != nil {
					event := &audit.Event{
						UserID:  &u.ID,
						Type:    audit.TypeAccessDenied,
						Message: r.Method + " " + r.URL.Path + " requires ADMIN role",
					}
					if err := auditor.Append(r.Context(), event); err != nil && logger != nil {
						logger.Warn("audit append failed", "type", event.Type, "error", err)
					}
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
