package auth

import "context"

// Roles known to the storefront.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID uint
	Role   string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the identity set by middleware.Authenticate.
func FromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != 0
}
