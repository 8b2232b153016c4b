package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	bolt "go.etcd.io/bbolt"
)

const (
	// DefaultBoltPath is the default filesystem path of the bolt database file.
	DefaultBoltPath = "content.db"

	// contentBucket is the single bucket all records live in.
	contentBucket = "content"
)

// BoltEngine is a persistent engine backed by a single-bucket BoltDB file.
//
// Concurrency:
//   - All exported methods are safe for concurrent use.
//   - Mutations run inside a Bolt write transaction, so each BulkUpdate or
//     DeleteWhere call is atomic on disk.
type BoltEngine struct {
	path   string
	handle *bolt.DB
	bucket []byte
	noSync bool
	opened atomic.Bool
	lock   sync.Mutex // Serializes open/close transitions
}

// NewBoltEngine constructs a BoltEngine from the given config.
// The database file is not touched until Open().
func NewBoltEngine(cfg Config) (*BoltEngine, error) {
	path, err := ResolveDiskPath(cfg.Path, DefaultBoltPath)
	if err != nil {
		return nil, err
	}

	return &BoltEngine{
		path:   path,
		bucket: []byte(contentBucket),
		noSync: cfg.NoSync,
	}, nil
}

// Open opens the database file and ensures the content bucket exists.
// It is safe to call Open multiple times; only the first call does work.
func (e *BoltEngine) Open() error {
	if e.opened.Load() {
		return nil
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	// Another goroutine may have opened it while we were waiting.
	if e.opened.Load() {
		return nil
	}

	handle, err := bolt.Open(e.path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrEngineOpenFailed, e.path, err)
	}

	handle.NoSync = e.noSync

	err = handle.Update(func(tx *bolt.Tx) error {
		_, bucketErr := tx.CreateBucketIfNotExists(e.bucket)
		if bucketErr != nil {
			return fmt.Errorf("failed to create bucket %q: %w", contentBucket, bucketErr)
		}

		return nil
	})
	if err != nil {
		_ = handle.Close()

		return fmt.Errorf("%w: %w", ErrEngineOpenFailed, err)
	}

	e.handle = handle
	e.opened.Store(true)

	return nil
}

// BulkUpdate writes all upserts and deletes in one Bolt transaction.
func (e *BoltEngine) BulkUpdate(upserts []Entry, deletes []string) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	err := e.handle.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(e.bucket)
		if bucket == nil {
			return ErrBucketNotFound
		}

		for _, entry := range upserts {
			if err := bucket.Put([]byte(entry.Key), entry.Value); err != nil {
				return err
			}
		}

		for _, key := range deletes {
			if err := bucket.Delete([]byte(key)); err != nil {
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

// DeleteWhere removes every record whose key satisfies pred, in one
// transaction. Keys are collected first; deleting while the cursor is mid-scan
// would invalidate it.
func (e *BoltEngine) DeleteWhere(pred func(key string) bool) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	err := e.handle.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(e.bucket)
		if bucket == nil {
			return ErrBucketNotFound
		}

		var matched []string

		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			if pred(string(k)) {
				matched = append(matched, string(k))
			}
		}

		for _, key := range matched {
			if err := bucket.Delete([]byte(key)); err != nil {
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
func (e *BoltEngine) LoadWhere(pred func(key string) bool) ([]Entry, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	var entries []Entry

	err := e.handle.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(e.bucket)
		if bucket == nil {
			return ErrBucketNotFound
		}

		return bucket.ForEach(func(k, v []byte) error {
			key := string(k)
			if !pred(key) {
				return nil
			}

			// Bolt values are only valid inside the transaction; copy out.
			entries = append(entries, Entry{
				Key:   key,
				Value: append([]byte(nil), v...),
			})

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}

	return entries, nil
}

// LoadKeys returns every key in the content bucket.
func (e *BoltEngine) LoadKeys() ([]string, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	keys := []string{}

	err := e.handle.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(e.bucket)
		if bucket == nil {
			return ErrBucketNotFound
		}

		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineReadFailed, err)
	}

	return keys, nil
}

// Close closes the database file. Close is idempotent.
func (e *BoltEngine) Close() error {
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
