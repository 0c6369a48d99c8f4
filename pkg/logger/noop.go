package logger

import "context"

var _ Logger = (*NoopLogger)(nil)

// NoopLogger 丢弃全部日志，未配置日志时的默认值，测试中也用它
type NoopLogger struct{}

func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (*NoopLogger) Debug(string, ...interface{}) {}
func (*NoopLogger) Info(string, ...interface{})  {}
func (*NoopLogger) Warn(string, ...interface{})  {}
func (*NoopLogger) Error(string, ...interface{}) {}

func (*NoopLogger) DebugContext(context.Context, string, ...interface{}) {}
func (*NoopLogger) InfoContext(context.Context, string, ...interface{})  {}
func (*NoopLogger) WarnContext(context.Context, string, ...interface{})  {}
func (*NoopLogger) ErrorContext(context.Context, string, ...interface{}) {}

// Named 子 logger 同样丢弃
func (l *NoopLogger) Named(string) Logger { return l }

func (*NoopLogger) Sync() error { return nil }
