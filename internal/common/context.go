package common

import "context"

type principalKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated principal.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// UserIDFromContext returns the authenticated principal, or "" for none.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(principalKey{}).(string)
	return id
}
