package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"backoffice-service/internal/auth"
	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
)

// TokenResolver turns a bearer token into the signed-in profile.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func RequireAuth(resolver TokenResolver, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			user, err := resolver.Resolve(r.Context(), strings.TrimSpace(token))
			if err != nil {
				observability.Logger(r.Context(), logger).Debug("token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequirePage lets the request through when the user's role may open any
// of pages.
func RequirePage(logger *slog.Logger, pages ...auth.Page) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "not signed in")
				return
			}

			for _, page := range pages {
				if auth.CanAccess(user.Role, page) {
					next.ServeHTTP(w, r)
					return
				}
			}

			observability.Logger(r.Context(), logger).Warn("page access denied",
				"uid", user.UID,
				"role", user.Role,
				"path", r.URL.Path,
			)
			writeError(w, http.StatusForbidden, "forbidden", "role "+string(user.Role)+" cannot access this page")
		})
	}
}
