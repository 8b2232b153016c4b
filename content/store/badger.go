package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
)

// DefaultBadgerPath is the default directory of the badger database.
const DefaultBadgerPath = "content-badger"

// BadgerEngine is a persistent engine backed by a badger LSM store.
//
// Each BulkUpdate and DeleteWhere call runs inside a single badger
// transaction. Very large predicate deletes can exceed badger's transaction
// size limit; the resulting error is reported to the caller unchanged.
type BadgerEngine struct {
	path   string
	cfg    Config
	handle *badger.DB
	opened atomic.Bool
	lock   sync.Mutex // Serializes open/close transitions
}

// NewBadgerEngine constructs a BadgerEngine from the given config.
// The directory is not touched until Open().
func NewBadgerEngine(cfg Config) *BadgerEngine {
	path := cfg.Path
	if path == "" {
		path = DefaultBadgerPath
	}

	return &BadgerEngine{
		path: path,
		cfg:  cfg,
	}
}

// Open opens the badger database. Safe to call multiple times; only the
// first call does work.
func (e *BadgerEngine) Open() error {
	if e.opened.Load() {
		return nil
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if e.opened.Load() {
		return nil
	}

	bufferSize := int64(e.cfg.writeBufferSize())

	// Badger caps the value threshold at 15% of the memtable size, so scale
	// it down together with the buffer.
	valueThreshold := min(bufferSize/10, 1<<20)
	if valueThreshold < 1 {
		valueThreshold = 1
	}

	opts := badger.DefaultOptions(e.path).
		WithMemTableSize(bufferSize).
		WithValueThreshold(valueThreshold).
		WithSyncWrites(!e.cfg.NoSync)
	opts.Logger = nil

	handle, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrEngineOpenFailed, e.path, err)
	}

	e.handle = handle
	e.opened.Store(true)

	return nil
}

// BulkUpdate writes all upserts and deletes in one badger transaction.
func (e *BadgerEngine) BulkUpdate(upserts []Entry, deletes []string) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	err := e.handle.Update(func(txn *badger.Txn) error {
		for _, entry := range upserts {
			if err := txn.Set([]byte(entry.Key), entry.Value); err != nil {
				return err
			}
		}

		for _, key := range deletes {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineWriteFailed, err)
	}

	return nil
}

// DeleteWhere removes every record whose key satisfies pred.
// Keys are collected before deletion; badger iterators must be closed before
// the transaction mutates the keys they cover.
func (e *BadgerEngine) DeleteWhere(pred func(key string) bool) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	err := e.handle.Update(func(txn *badger.Txn) error {
		matched := collectBadgerKeys(txn, pred)

		for _, key := range matched {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineDeleteFailed, err)
	}

	return nil
}

// LoadWhere returns a copy of every record whose key satisfies pred.
func (e *BadgerEngine) LoadWhere(pred func(key string) bool) ([]Entry, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	var entries []Entry

	err := e.handle.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			key := string(item.Key())
			if !pred(key) {
				continue
			}

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			entries = append(entries, Entry{Key: key, Value: value})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}

	return entries, nil
}

// LoadKeys returns every key in the database.
func (e *BadgerEngine) LoadKeys() ([]string, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	keys := []string{}

	err := e.handle.View(func(txn *badger.Txn) error {
		keys = append(keys, collectBadgerKeys(txn, func(string) bool { return true })...)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}

	return keys, nil
}

// Close closes the badger database. Close is idempotent.
func (e *BadgerEngine) Close() error {
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

// collectBadgerKeys scans the transaction and returns all keys matching pred.
// Values are not prefetched.
func collectBadgerKeys(txn *badger.Txn, pred func(key string) bool) []string {
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.PrefetchValues = false

	it := txn.NewIterator(iterOpts)
	defer it.Close()

	var keys []string

	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Item().Key())
		if pred(key) {
			keys = append(keys, key)
		}
	}

	return keys
}
