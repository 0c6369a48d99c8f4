package bytebuff

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// Pool 基于 bytebufferpool 的缓冲池，附带简单统计
type Pool struct {
	pool bytebufferpool.Pool
	gets atomic.Uint64
	puts atomic.Uint64
}

var defaultPool = &Pool{}

// Get 获取一个已 Reset 的 ByteBuffer
func (p *Pool) Get() *bytebufferpool.ByteBuffer {
	p.gets.Add(1)
	return p.pool.Get()
}

// Put 归还 ByteBuffer，归还后不能再使用
func (p *Pool) Put(buf *bytebufferpool.ByteBuffer) {
	if buf == nil {
		return
	}
	p.puts.Add(1)
	p.pool.Put(buf)
}

// Stats 返回 Get/Put 次数
func (p *Pool) Stats() (gets, puts uint64) {
	return p.gets.Load(), p.puts.Load()
}

func Get() *bytebufferpool.ByteBuffer { return defaultPool.Get() }

func Put(buf *bytebufferpool.ByteBuffer) { defaultPool.Put(buf) }

func Stats() (gets, puts uint64) { return defaultPool.Stats() }
