package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	playerIDKey
)

// ContextFieldExtractor 从 context 提取日志字段
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// WithRequestID 在 context 中记录请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithPlayerID 在 context 中记录已认证的玩家 ID
func WithPlayerID(ctx context.Context, playerID int64) context.Context {
	return context.WithValue(ctx, playerIDKey, playerID)
}

// RequestIDFrom 读取请求 ID
func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok
}

// PlayerIDFrom 读取玩家 ID
func PlayerIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(playerIDKey).(int64)
	return v, ok
}

// DefaultContextExtractor 提取 request_id 与 player_id
func DefaultContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if id, ok := RequestIDFrom(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	if id, ok := PlayerIDFrom(ctx); ok {
		fields = append(fields, zap.Int64("player_id", id))
	}
	return fields
}
