package logger

import (
	"context"

	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger tagged with request_id and user_id when
// the context carries them.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if userID, ok := utils.GetUserIDFromContext(ctx); ok {
		l = l.With(zap.Uint("user_id", userID))
	}
	return l
}
