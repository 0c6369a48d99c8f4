package compress

import (
	"fmt"
	"sync"
)

// Compressor 字节级压缩，用于缓存值等可重建的数据
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Name() string
}

// Type 压缩算法
type Type string

const (
	TypeNone   Type = "none"
	TypeSnappy Type = "snappy"
	TypeZstd   Type = "zstd"
	TypeLZ4    Type = "lz4"
)

// Factory 创建压缩器
type Factory func() (Compressor, error)

var (
	mu        sync.RWMutex
	factories = map[Type]Factory{
		TypeNone:   func() (Compressor, error) { return none{}, nil },
		TypeSnappy: func() (Compressor, error) { return snappyCompressor{}, nil },
		TypeLZ4:    func() (Compressor, error) { return lz4Compressor{}, nil },
		TypeZstd:   newZstd,
	}
)

// Register 注册或替换压缩算法
func Register(t Type, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[t] = f
}

// New 按名称创建压缩器，空字符串等同 none
func New(t Type) (Compressor, error) {
	if t == "" {
		t = TypeNone
	}
	mu.RLock()
	f, ok := factories[t]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
	return f()
}

type none struct{}

func (none) Compress(src []byte) ([]byte, error)   { return src, nil }
func (none) Decompress(src []byte) ([]byte, error) { return src, nil }
func (none) Name() string                          { return string(TypeNone) }
