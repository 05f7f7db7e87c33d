package auth

import "context"

// Role names granted to authenticated callers.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity describes the authenticated caller attached to a request.
type Identity struct {
	AccountID string
	Email     string
	Roles     []string
}

// HasRole reports whether the identity carries the given role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type contextKey string

const identityContextKey contextKey = "github.com/kimotaku1/Ecommerce-forever/internal/platform/auth/identity"

// WithIdentity stores the identity on the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity from the context when present.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
