package bytebuff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolReuse(t *testing.T) {
	p := &Pool{}

	buf := p.Get()
	_, _ = buf.WriteString("monster")
	assert.Equal(t, "monster", buf.String())
	p.Put(buf)
	p.Put(nil)

	again := p.Get()
	assert.Equal(t, 0, again.Len(), "buffer from pool must be reset")

	gets, puts := p.Stats()
	assert.Equal(t, uint64(2), gets)
	assert.Equal(t, uint64(1), puts)
}
