package store

// Engine defines the operations the content database requires from a
// key-value backend.
//
// General notes:
//
//   - Keys are strings. Values are opaque byte blobs; the layer above encodes
//     records into them before they reach the engine.
//   - Methods block until the underlying storage has committed the change;
//     asynchrony is supplied by the caller.
//   - Each BulkUpdate and DeleteWhere call is applied within a single engine
//     transaction: either every entry in the call lands, or none do.
//   - Deleting a key that does not exist is not an error.
//   - All methods SHOULD be safe for concurrent use; ordering across
//     concurrent callers is the caller's concern.
//
// Error semantics:
//
//   - Methods return a non-nil error only in exceptional conditions (I/O
//     errors, use before Open, use after Close).
//   - LoadWhere with no matching keys returns an empty slice and a nil error.
type Engine interface {
	// Open initializes the backend (file handles, directories, recovery).
	// Every other method fails until Open has returned successfully.
	Open() error

	// BulkUpdate applies the given upserts and deletes in one transaction.
	// Either slice may be nil or empty.
	BulkUpdate(upserts []Entry, deletes []string) error

	// DeleteWhere removes every entry whose key satisfies pred.
	// Matching zero entries is not an error.
	DeleteWhere(pred func(key string) bool) error

	// LoadWhere returns every entry whose key satisfies pred.
	// The order of returned entries is unspecified.
	LoadWhere(pred func(key string) bool) ([]Entry, error)

	// LoadKeys returns every key in the engine, without values.
	LoadKeys() ([]string, error)

	// Close releases resources held by the engine. Close is idempotent;
	// after Close returns, the engine must not be used.
	Close() error
}

// Entry is a single key-value pair as stored by an Engine.
type Entry struct {
	// Key is the string identifier for the stored value.
	Key string
	// Value holds the stored bytes (a codec-encoded record envelope).
	Value []byte
}
