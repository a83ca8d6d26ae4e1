package middleware

import "context"

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxUserID        ctxKey = "user_id"
	ctxIsAdmin       ctxKey = "is_admin"
)

func GetCorrelationID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxCorrelationID).(string); ok {
		return s
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxUserID).(string); ok {
		return s
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	if b, ok := ctx.Value(ctxIsAdmin).(bool); ok {
		return b
	}
	return false
}

// WithIdentity is exported for handler tests that need an authenticated
// request without running the full middleware chain.
func WithIdentity(ctx context.Context, userID string, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxIsAdmin, isAdmin)
}
