package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

// LoggingMiddleware 记录发送结果
func LoggingMiddleware(log logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			log.ErrorContext(ctx, "message publish failed",
				"topic", msg.Topic,
				"key", string(msg.Key),
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
		log.DebugContext(ctx, "message published",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"duration", time.Since(start),
		)
		return nil
	}
}

// RecoveryMiddleware 把发送链路中的 panic 转为错误
func RecoveryMiddleware(log logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(ctx, "producer panic recovered", "topic", msg.Topic, "panic", r)
				err = fmt.Errorf("%w: %v", ErrProducerPanic, r)
			}
		}()
		return next(ctx, msg)
	}
}
