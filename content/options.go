package content

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/contentkv/contentdb/content/store"
)

const (
	// BackendBolt is the bbolt-backed persistent engine (single file).
	BackendBolt = "bolt"
	// BackendBadger is the badger-backed persistent engine (directory).
	BackendBadger = "badger"
	// BackendPebble is the pebble-backed persistent engine (directory).
	BackendPebble = "pebble"
	// BackendMemory is the ephemeral in-process engine.
	BackendMemory = "memory"

	// CodecMsgpack encodes record envelopes as MessagePack.
	CodecMsgpack = "msgpack"
	// CodecJSON encodes record envelopes as JSON.
	CodecJSON = "json"

	// DefaultBackend is used when the options do not name a backend.
	DefaultBackend = BackendBolt
	// DefaultCodec is used when the options do not name a codec.
	DefaultCodec = CodecMsgpack
)

// Options controls how Open builds a Database.
// The zero value is usable: bolt backend at its default path, msgpack codec,
// default write buffer, no logging, no metrics.
type Options struct {
	// Backend selects the storage engine. Valid values: "bolt", "badger",
	// "pebble", "memory".
	Backend string

	// Path is the on-disk location of the store. Ignored by the memory
	// backend. When empty, the backend's default location is used.
	Path string

	// Codec selects the record envelope encoding. Valid values: "msgpack",
	// "json".
	Codec string

	// WriteBufferSize is the engine write buffer as a human-readable size
	// string, e.g. "64KB". When empty, a default is chosen based on
	// LowEndDevice.
	WriteBufferSize string

	// LowEndDevice halves the default write buffer for memory-constrained
	// hosts. Only consulted when WriteBufferSize is empty.
	LowEndDevice bool

	// NoSync disables fsync on commit for disk backends.
	NoSync bool

	// Logger receives structured pipeline events. Nil disables logging.
	Logger *zerolog.Logger

	// Metrics receives timing and size observations. Nil disables them.
	Metrics Metrics
}

// withDefaults returns a copy of o with empty fields replaced by defaults.
func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}

	if o.Codec == "" {
		o.Codec = DefaultCodec
	}

	if o.Metrics == nil {
		o.Metrics = NopMetrics{}
	}

	return o
}

// logger returns the configured logger, or a disabled one.
func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}

	return zerolog.Nop()
}

// writeBufferBytes parses WriteBufferSize, substituting the device-class
// default when it is empty.
func (o Options) writeBufferBytes() (uint64, error) {
	if o.WriteBufferSize == "" {
		if o.LowEndDevice {
			return store.LowEndWriteBufferSize, nil
		}

		return store.DefaultWriteBufferSize, nil
	}

	size, err := humanize.ParseBytes(o.WriteBufferSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidWriteBufferSize, o.WriteBufferSize, err)
	}

	if size == 0 {
		return 0, fmt.Errorf("%w: %q: must be positive", ErrInvalidWriteBufferSize, o.WriteBufferSize)
	}

	return size, nil
}

// buildEngine constructs the configured engine. The engine is not opened;
// the database opens it asynchronously.
func (o Options) buildEngine() (store.Engine, error) {
	bufferSize, err := o.writeBufferBytes()
	if err != nil {
		return nil, err
	}

	cfg := store.Config{
		Path:            o.Path,
		WriteBufferSize: bufferSize,
		NoSync:          o.NoSync,
	}

	switch o.Backend {
	case BackendBolt:
		return store.NewBoltEngine(cfg)
	case BackendBadger:
		return store.NewBadgerEngine(cfg), nil
	case BackendPebble:
		return store.NewPebbleEngine(cfg), nil
	case BackendMemory:
		return store.NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf(
			"%w: %q; valid values are: %q, %q, %q, %q",
			ErrInvalidBackend, o.Backend, BackendBolt, BackendBadger, BackendPebble, BackendMemory,
		)
	}
}

// buildCodec constructs the configured record codec.
func (o Options) buildCodec() (store.Codec, error) {
	switch o.Codec {
	case CodecMsgpack:
		return store.NewMsgpackCodec(), nil
	case CodecJSON:
		return store.NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf(
			"%w: %q; valid values are: %q, %q",
			ErrInvalidCodec, o.Codec, CodecMsgpack, CodecJSON,
		)
	}
}
