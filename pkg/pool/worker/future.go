package worker

import (
	"context"
	"fmt"
)

// Future 异步任务结果
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
	// panicked 任务内 panic 的值，Await 时在调用方重新抛出
	panicked any
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.value = value
	f.err = err
	close(f.ch)
}

// run 执行任务并保证 Future 一定完成
func (f *Future[T]) run(fn func() (T, error)) {
	var (
		value T
		err   error
	)
	defer func() {
		if r := recover(); r != nil {
			f.panicked = r
			f.complete(value, fmt.Errorf("worker: task panicked: %v", r))
		}
	}()
	value, err = fn()
	f.complete(value, err)
}

// Inner 任务完成时关闭的 channel
func (f *Future[T]) Inner() <-chan struct{} {
	return f.ch
}

// Done 是否已完成
func (f *Future[T]) Done() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Await 阻塞等待结果；任务中的 panic 会在这里重新抛出
func (f *Future[T]) Await() (T, error) {
	<-f.ch
	if f.panicked != nil {
		panic(f.panicked)
	}
	return f.value, f.err
}

// AwaitContext 等待结果或 ctx 结束
// ctx 先结束时返回 ctx.Err()，任务仍会在后台跑完
func AwaitContext[T any](ctx context.Context, f *Future[T]) (T, error) {
	select {
	case <-f.ch:
		return f.Await()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go 在新协程中执行任务
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go f.run(fn)
	return f
}
