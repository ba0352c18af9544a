package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// Middleware decodes bearer tokens and gates protected routes.
type Middleware struct {
	Tokens *TokenIssuer
	Logger *slog.Logger
}

// Authenticate extracts the bearer identity into the request context.
// Invalid or absent tokens leave the caller anonymous; enforcement
// happens in RequireAuth so that `me` can tolerate anonymous calls.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			identity, err := m.Tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err == nil {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), identity))
			} else if m.Logger != nil {
				m.Logger.Debug("bearer token rejected", slog.String("path", r.URL.Path))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth aborts with 401 before the handler runs when the caller is anonymous.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.IdentityFromContext(r.Context()) == nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole aborts with 403 unless the caller holds one of the given roles.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
