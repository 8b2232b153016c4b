package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
)

// DefaultPebblePath is the default directory of the pebble database.
const DefaultPebblePath = "content-pebble"

// PebbleEngine is a persistent engine backed by a pebble LSM store.
//
// Mutations are staged in a pebble batch and committed atomically, so each
// BulkUpdate and DeleteWhere call behaves like a single transaction.
type PebbleEngine struct {
	path   string
	cfg    Config
	handle *pebble.DB
	opened atomic.Bool
	lock   sync.Mutex // Serializes open/close transitions
}

// NewPebbleEngine constructs a PebbleEngine from the given config.
// The directory is not touched until Open().
func NewPebbleEngine(cfg Config) *PebbleEngine {
	path := cfg.Path
	if path == "" {
		path = DefaultPebblePath
	}

	return &PebbleEngine{
		path: path,
		cfg:  cfg,
	}
}

// Open opens the pebble database. Safe to call multiple times; only the
// first call does work.
func (e *PebbleEngine) Open() error {
	if e.opened.Load() {
		return nil
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if e.opened.Load() {
		return nil
	}

	handle, err := pebble.Open(e.path, &pebble.Options{
		MemTableSize: e.cfg.writeBufferSize(),
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrEngineOpenFailed, e.path, err)
	}

	e.handle = handle
	e.opened.Store(true)

	return nil
}

// BulkUpdate stages all upserts and deletes in one batch and commits it.
func (e *PebbleEngine) BulkUpdate(upserts []Entry, deletes []string) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	batch := e.handle.NewBatch()
	defer batch.Close()

	for _, entry := range upserts {
		if err := batch.Set([]byte(entry.Key), entry.Value, nil); err != nil {
			return fmt.Errorf("%w: %w", ErrEngineWriteFailed, err)
		}
	}

	for _, key := range deletes {
		if err := batch.Delete([]byte(key), nil); err != nil {
			return fmt.Errorf("%w: %w", ErrEngineWriteFailed, err)
		}
	}

	if err := batch.Commit(e.writeOptions()); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineWriteFailed, err)
	}

	return nil
}

// DeleteWhere removes every record whose key satisfies pred as one batch.
func (e *PebbleEngine) DeleteWhere(pred func(key string) bool) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	matched, err := e.collectKeys(pred)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineDeleteFailed, err)
	}

	batch := e.handle.NewBatch()
	defer batch.Close()

	for _, key := range matched {
		if err := batch.Delete([]byte(key), nil); err != nil {
			return fmt.Errorf("%w: %w", ErrEngineDeleteFailed, err)
		}
	}

	if err := batch.Commit(e.writeOptions()); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineDeleteFailed, err)
	}

	return nil
}

// LoadWhere returns a copy of every record whose key satisfies pred.
func (e *PebbleEngine) LoadWhere(pred func(key string) bool) ([]Entry, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	iter, err := e.handle.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}
	defer iter.Close()

	var entries []Entry

	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		if !pred(key) {
			continue
		}

		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
		}

		// Iterator buffers are reused on Next; copy out.
		entries = append(entries, Entry{
			Key:   key,
			Value: append([]byte(nil), value...),
		})
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}

	return entries, nil
}

// LoadKeys returns every key in the database.
func (e *PebbleEngine) LoadKeys() ([]string, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	keys, err := e.collectKeys(func(string) bool { return true })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}

	return keys, nil
}

// Close closes the pebble database. Close is idempotent.
func (e *PebbleEngine) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if !e.opened.Load() {
		return nil
	}

	if err := e.handle.Close(); err != nil {
		return err
	}

	e.opened.Store(false)

	return nil
}

// collectKeys scans the whole keyspace and returns all keys matching pred.
func (e *PebbleEngine) collectKeys(pred func(key string) bool) ([]string, error) {
	iter, err := e.handle.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	keys := []string{}

	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		if pred(key) {
			keys = append(keys, key)
		}
	}

	if err := iter.Error(); err != nil {
		return nil, err
	}

	return keys, nil
}

// writeOptions maps the NoSync config knob onto pebble's write options.
func (e *PebbleEngine) writeOptions() *pebble.WriteOptions {
	if e.cfg.NoSync {
		return pebble.NoSync
	}

	return pebble.Sync
}
