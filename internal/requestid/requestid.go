package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header carries the request ID in and out of the service.
const Header = "X-Request-Id"

// GinKey is the gin context key for handlers that use c.GetString.
const GinKey = "request_id"

type ctxKey struct{}

// New returns a fresh request ID.
func New() string {
	return uuid.NewString()
}

// Ensure returns id, or a fresh one when id is blank.
func Ensure(id string) string {
	if strings.TrimSpace(id) == "" {
		return New()
	}
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID, or "" when none was set.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if rid, ok := ctx.Value(ctxKey{}).(string); ok {
		return rid
	}
	return ""
}
