package app

import "github.com/google/wire"

// Components 由 Wire 收集的服务与资源
type Components struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(InitApp)

// InitApp 按选项创建 App 并挂上组件
func InitApp(opts []Option, comps Components) *App {
	a := New(opts...)
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}

// CloserFunc 将函数适配为 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
