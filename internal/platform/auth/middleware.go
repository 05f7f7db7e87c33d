package auth

import (
	"net/http"
	"strings"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
)

// Verifier validates a raw token and returns the caller identity.
type Verifier interface {
	Verify(raw string) (*Identity, error)
}

// Middleware authenticates requests using a bearer token and stores the
// identity on the request context. Requests without a valid token are rejected.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" || verifier == nil {
				writeUnauthorized(w, r)
				return
			}

			identity, err := verifier.Verify(raw)
			if err != nil {
				writeUnauthorized(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests that lack the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, r)
				return
			}
			if !identity.HasRole(role) {
				httpx.WriteError(r.Context(), w, httpx.NewError("forbidden", "not authorized for this resource", http.StatusForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromRequest extracts the bearer token, falling back to the legacy
// "token" header still sent by older storefront clients.
func tokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("unauthorized", "not authorized, login again", http.StatusUnauthorized))
}
