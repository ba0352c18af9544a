package shared

import (
	"context"

	"github.com/google/uuid"
)

// Identity describes the authenticated caller extracted from a bearer token.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, nil for anonymous callers.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
