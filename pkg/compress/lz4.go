package compress

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// maxLZ4Size 解压前校验长度头，防止异常数据触发超大分配
const maxLZ4Size = 64 << 20

var errCorruptLZ4 = errors.New("lz4: corrupt block")

// lz4Compressor 块格式：4 字节原始长度（小端）+ 压缩块
// 不可压缩时块长度等于原始长度，内容为原始数据
type lz4Compressor struct{}

func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, 4+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))
	if len(src) == 0 {
		return dst[:4], nil
	}

	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst[4:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(src) {
		n = copy(dst[4:], src)
	}
	return dst[:4+n], nil
}

func (lz4Compressor) Decompress(src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, errCorruptLZ4
	}
	size := int(binary.LittleEndian.Uint32(src))
	if size > maxLZ4Size {
		return nil, fmt.Errorf("lz4: block of %d bytes exceeds limit", size)
	}
	body := src[4:]
	if len(body) == size {
		out := make([]byte, size)
		copy(out, body)
		return out, nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != size {
		return nil, errCorruptLZ4
	}
	return out, nil
}

func (lz4Compressor) Name() string { return string(TypeLZ4) }
