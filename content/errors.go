package content

import "errors"

var (
	// ErrUnsupportedOperation is returned by the executor for an operation
	// kind it does not recognize. Unreachable through the Mutation builder.
	ErrUnsupportedOperation = errors.New("unsupported mutation operation")
	// ErrInvalidBackend is returned when options name an unknown backend.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrInvalidCodec is returned when options name an unknown codec.
	ErrInvalidCodec = errors.New("invalid codec")
	// ErrInvalidWriteBufferSize is returned when the write buffer size
	// cannot be parsed as a byte size.
	ErrInvalidWriteBufferSize = errors.New("invalid write buffer size")
)
