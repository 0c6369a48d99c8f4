package idgen

// Generator ID 生成器
// 怪物、对战记录、召唤记录共用同一个生成器，ID 全局唯一且单调递增
type Generator interface {
	NextID() (int64, error)
}

// GeneratorFunc 函数适配
type GeneratorFunc func() (int64, error)

func (f GeneratorFunc) NextID() (int64, error) { return f() }
