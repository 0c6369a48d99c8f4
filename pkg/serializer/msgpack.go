package serializer

import (
	"bytes"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/lk2023060901/xdooria-arena/pkg/pool/bytebuff"
)

// RawToString 让 []byte 解码为 string，MapType 让 interface{} 解码为 map[string]interface{}
var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]interface{}{})
	msgpackHandle.RawToString = true
	msgpackHandle.WriteExt = true
}

// Encode 使用 msgpack 编码
func Encode(v interface{}) ([]byte, error) {
	buf := bytebuff.Get()
	defer bytebuff.Put(buf)

	if err := codec.NewEncoder(buf, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}

	// buf 会被复用，必须拷贝
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// Decode 使用 msgpack 解码
func Decode(data []byte, v interface{}) error {
	return codec.NewDecoder(bytes.NewReader(data), msgpackHandle).Decode(v)
}

// Msgpack msgpack 序列化器，用于 Redis 缓存与 Kafka 事件
type Msgpack struct{}

func NewMsgpack() *Msgpack { return &Msgpack{} }

func (s *Msgpack) Serialize(v any) ([]byte, error) { return Encode(v) }

func (s *Msgpack) Deserialize(data []byte, v any) error { return Decode(data, v) }

func (s *Msgpack) ContentType() string { return "application/msgpack" }
