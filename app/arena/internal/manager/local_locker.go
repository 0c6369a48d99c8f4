package manager

import (
	"context"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// LocalLocker 进程内分段锁
// 键经 xxhash 映射到固定数量的信号量，按段序号升序获取以避免死锁
type LocalLocker struct {
	stripes []chan struct{}
}

// NewLocalLocker 创建分段锁
func NewLocalLocker(stripes int) *LocalLocker {
	if stripes <= 0 {
		stripes = 256
	}
	l := &LocalLocker{stripes: make([]chan struct{}, stripes)}
	for i := range l.stripes {
		l.stripes[i] = make(chan struct{}, 1)
	}
	return l
}

func (l *LocalLocker) indices(keys []string) []int {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		idx = append(idx, int(xxhash.Sum64String(k)%uint64(len(l.stripes))))
	}
	slices.Sort(idx)
	// 不同键可能落在同一段
	return slices.Compact(idx)
}

func (l *LocalLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	idx := l.indices(keys)
	held := make([]int, 0, len(idx))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-l.stripes[held[i]]
		}
	}

	for _, i := range idx {
		select {
		case l.stripes[i] <- struct{}{}:
			held = append(held, i)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return sync.OnceFunc(release), nil
}
