package sensor

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message kinds sent by the sensor bridge.
const (
	KindBody  = "body"
	KindColor = "color"
)

// Message is the bridge envelope. Body carries a body frame, Color a JPEG
// encoded color frame.
type Message struct {
	Kind  string          `json:"kind" msgpack:"kind"`
	Body  *skeleton.Frame `json:"body,omitempty" msgpack:"body,omitempty"`
	Color []byte          `json:"color,omitempty" msgpack:"color,omitempty"`
}

// Codec encodes and decodes bridge messages.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CodecFor returns the codec registered under name.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                       { return "msgpack" }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
