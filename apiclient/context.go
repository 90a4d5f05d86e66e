package apiclient

import (
	"context"
	"strings"
)

type contextKey string

const tokenContextKey contextKey = "bearer_token"

// WithToken returns a context whose outgoing API calls carry the given bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}
