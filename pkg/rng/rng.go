package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Source 战斗与召唤所需的随机源
// 引擎只依赖此接口，测试中可替换为固定序列
type Source interface {
	// Intn 返回 [0, n) 的整数，n <= 0 时 panic
	Intn(n int) int
	// Float64 返回 [0, 1) 的浮点数
	Float64() float64
}

// RNG 可复现的随机数流
// 相同 seed 产生相同序列；Position 记录底层消耗的次数，Restore 可恢复到任意位置
type RNG struct {
	mu   sync.Mutex
	seed int64
	src  *countingSource
	r    *rand.Rand
}

// countingSource 只实现 rand.Source，使 rand.Rand 的所有方法都经由 Int63 取值
type countingSource struct {
	inner rand.Source
	n     int64
}

func (s *countingSource) Int63() int64 {
	s.n++
	return s.inner.Int63()
}

func (s *countingSource) Seed(seed int64) {
	s.inner.Seed(seed)
	s.n = 0
}

// New 创建以 seed 为种子的随机流
func New(seed int64) *RNG {
	src := &countingSource{inner: rand.NewSource(seed)}
	return &RNG{seed: seed, src: src, r: rand.New(src)}
}

// Restore 创建随机流并前进到 position
func Restore(seed, position int64) *RNG {
	g := New(seed)
	for g.src.n < position {
		g.src.Int63()
	}
	return g
}

// NewSeed 从系统熵源生成种子
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("rng: crypto source unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63))
}

// Seed 返回种子，记录到对战/召唤记录中用于回放
func (g *RNG) Seed() int64 {
	return g.seed
}

// Position 返回底层已消耗的取值次数
func (g *RNG) Position() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.src.n
}

func (g *RNG) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Intn(n)
}

func (g *RNG) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Float64()
}

// WeightedIndex 按权重选择下标，权重无需归一化
// 所有权重之和必须大于 0
func WeightedIndex(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		panic("rng: weights must have a positive sum")
	}

	u := src.Float64() * total
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if u < cumulative {
			return i
		}
	}
	// 浮点累加误差
	return last
}
