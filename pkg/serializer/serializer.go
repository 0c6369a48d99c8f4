package serializer

import "encoding/json"

// Serializer 序列化器接口
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	// ContentType 写入 Kafka header 与日志
	ContentType() string
}

// JSON JSON 序列化器
type JSON struct{}

func NewJSON() *JSON { return &JSON{} }

func (s *JSON) Serialize(v any) ([]byte, error) { return json.Marshal(v) }

func (s *JSON) Deserialize(data []byte, v any) error { return json.Unmarshal(data, v) }

func (s *JSON) ContentType() string { return "application/json" }

// ByName 根据名称选择序列化器，未知名称返回 msgpack
func ByName(name string) Serializer {
	if name == "json" {
		return NewJSON()
	}
	return NewMsgpack()
}
