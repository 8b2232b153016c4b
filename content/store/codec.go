package store

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is the envelope persisted for every stored value. The key is
// duplicated inside the envelope so a record remains self-describing when
// loaded through a predicate scan.
type Record struct {
	// Key is the record's key, identical to the engine key it is stored under.
	Key string `json:"key" msgpack:"key"`
	// Data is the caller's opaque payload.
	Data []byte `json:"data" msgpack:"data"`
}

// Codec encodes and decodes Record envelopes to and from the bytes an Engine
// persists. Implementations must be safe for concurrent use.
type Codec interface {
	// Encode serializes the record into an engine value.
	Encode(record Record) ([]byte, error)

	// Decode deserializes an engine value back into a record.
	Decode(value []byte) (Record, error)
}

// MsgpackCodec encodes records as MessagePack. It is the default codec:
// compact, binary-safe, and cheap to decode during bulk loads.
type MsgpackCodec struct{}

// NewMsgpackCodec returns a new MsgpackCodec.
func NewMsgpackCodec() *MsgpackCodec {
	return &MsgpackCodec{}
}

// Encode implements Codec.
func (*MsgpackCodec) Encode(record Record) ([]byte, error) {
	value, err := msgpack.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: key %q: %w", ErrCodecEncodeFailed, record.Key, err)
	}

	return value, nil
}

// Decode implements Codec.
func (*MsgpackCodec) Decode(value []byte) (Record, error) {
	var record Record

	if err := msgpack.Unmarshal(value, &record); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrCodecDecodeFailed, err)
	}

	if record.Key == "" {
		return Record{}, fmt.Errorf("%w: envelope has no key", ErrCodecDecodeFailed)
	}

	return record, nil
}

// JSONCodec encodes records as JSON. Useful when stored values need to stay
// inspectable with off-the-shelf tooling.
type JSONCodec struct{}

// NewJSONCodec returns a new JSONCodec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode implements Codec.
func (*JSONCodec) Encode(record Record) ([]byte, error) {
	value, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: key %q: %w", ErrCodecEncodeFailed, record.Key, err)
	}

	return value, nil
}

// Decode implements Codec.
func (*JSONCodec) Decode(value []byte) (Record, error) {
	var record Record

	if err := json.Unmarshal(value, &record); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrCodecDecodeFailed, err)
	}

	if record.Key == "" {
		return Record{}, fmt.Errorf("%w: envelope has no key", ErrCodecDecodeFailed)
	}

	return record, nil
}
