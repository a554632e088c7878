package sensor

import "errors"

var (
	// ErrUnknownCodec is returned for a codec name other than json or msgpack.
	ErrUnknownCodec = errors.New("sensor: unknown codec")
	// ErrUnknownKind is returned for an envelope whose kind is not body or color.
	ErrUnknownKind = errors.New("sensor: unknown message kind")
)
