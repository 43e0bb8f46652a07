package pkg

import "context"

type contextKey string

const userIDContextKey contextKey = "gymplan-user-id"

// ContextWithUserID marks the request context as authenticated for username.
// Set by the auth middleware, read by the handlers downstream of it.
func ContextWithUserID(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userIDContextKey, username)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(userIDContextKey).(string)
	return username, ok
}
