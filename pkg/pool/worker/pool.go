package worker

import (
	"fmt"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Config 协程池配置
type Config struct {
	// Size 为 0 时使用 GOMAXPROCS
	Size int `mapstructure:"size" validate:"gte=0"`
	// ExpiryDuration 空闲 worker 回收间隔
	ExpiryDuration time.Duration `mapstructure:"expiry_duration"`
	// NonBlocking 为 true 时池满直接返回 ants.ErrPoolOverload
	NonBlocking bool `mapstructure:"non_blocking"`
}

// Pool 基于 ants 的泛型任务池，CPU 密集的结算任务在这里执行
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建任务池
func NewPool[T any](cfg Config) (*Pool[T], error) {
	size := cfg.Size
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	opts := []ants.Option{ants.WithNonblocking(cfg.NonBlocking)}
	if cfg.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(cfg.ExpiryDuration))
	}

	p, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, fmt.Errorf("worker: create pool: %w", err)
	}
	return &Pool[T]{inner: p}, nil
}

// NewDefaultPool 使用默认配置创建任务池
func NewDefaultPool[T any]() *Pool[T] {
	p, err := NewPool[T](Config{})
	if err != nil {
		panic(err)
	}
	return p
}

// Submit 提交任务；提交失败时返回的 Future 已带错误
func (p *Pool[T]) Submit(fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	if err := p.inner.Submit(func() { f.run(fn) }); err != nil {
		var zero T
		f.complete(zero, fmt.Errorf("worker: submit: %w", err))
	}
	return f
}

// Running 正在运行的 worker 数
func (p *Pool[T]) Running() int {
	return p.inner.Running()
}

// Cap 池容量
func (p *Pool[T]) Cap() int {
	return p.inner.Cap()
}

// Release 等待运行中的任务结束后释放
func (p *Pool[T]) Release() {
	_ = p.inner.ReleaseTimeout(5 * time.Second)
}

// Close 实现 app.Closer
func (p *Pool[T]) Close() error {
	p.Release()
	return nil
}
