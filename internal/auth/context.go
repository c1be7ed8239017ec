package auth

import "context"

type ctxKey struct{}

// WithIdentity attaches the resolved requester to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the requester, or false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// RequesterID is the requester's user id, empty for anonymous requests.
func RequesterID(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
