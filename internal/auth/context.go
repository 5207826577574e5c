package auth

import "context"

type capabilityKey struct{}

// WithAdmin marks ctx as carrying the administrator capability. Only
// the authentication middleware grants it.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, capabilityKey{}, true)
}

// IsAdmin reports whether ctx carries the administrator capability. It
// satisfies the moderation service's Authorizer signature.
func IsAdmin(ctx context.Context) bool {
	granted, ok := ctx.Value(capabilityKey{}).(bool)
	return ok && granted
}
