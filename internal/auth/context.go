package auth

import "context"

type ctxKey string

const identityKey ctxKey = "reflect.identity"

// WithIdentity stores the authenticated caller in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the caller from context.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.Subject != ""
}
