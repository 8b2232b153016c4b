package store

import (
	"sync"
	"sync/atomic"

	xxhash "github.com/cespare/xxhash/v2"
)

// memoryShardCount is the number of shards the keyspace is spread over.
// Must be a power of two so shard selection is a mask.
const memoryShardCount = 16

// memoryShard holds one slice of the keyspace.
type memoryShard struct {
	container map[string][]byte
	mu        sync.RWMutex
}

// MemoryEngine is an ephemeral in-memory engine, useful for tests and for
// callers that only need process-local storage.
//
// Keys are spread over a fixed set of shards by xxhash so independent
// single-key updates rarely contend. Whole-store operations (predicate scans
// and deletes, bulk updates touching several shards) take every shard lock in
// index order, which keeps each Engine call atomic and makes deadlock
// impossible.
type MemoryEngine struct {
	shards [memoryShardCount]*memoryShard
	opened atomic.Bool
}

// NewMemoryEngine creates an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	e := &MemoryEngine{}
	for i := range e.shards {
		e.shards[i] = &memoryShard{container: map[string][]byte{}}
	}

	return e
}

// Open marks the engine ready. There are no deferred resources.
func (e *MemoryEngine) Open() error {
	e.opened.Store(true)

	return nil
}

// BulkUpdate applies all upserts and deletes atomically.
//
// The single-upsert and single-delete fast paths lock only the owning shard.
func (e *MemoryEngine) BulkUpdate(upserts []Entry, deletes []string) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	// Fast path: one key, one shard.
	if len(upserts) == 1 && len(deletes) == 0 {
		entry := upserts[0]
		shard := e.shardFor(entry.Key)

		shard.mu.Lock()
		shard.container[entry.Key] = append([]byte(nil), entry.Value...)
		shard.mu.Unlock()

		return nil
	}

	if len(upserts) == 0 && len(deletes) == 1 {
		shard := e.shardFor(deletes[0])

		shard.mu.Lock()
		delete(shard.container, deletes[0])
		shard.mu.Unlock()

		return nil
	}

	e.lockAll()
	defer e.unlockAll()

	for _, entry := range upserts {
		e.shardFor(entry.Key).container[entry.Key] = append([]byte(nil), entry.Value...)
	}

	for _, key := range deletes {
		delete(e.shardFor(key).container, key)
	}

	return nil
}

// DeleteWhere removes every record whose key satisfies pred.
func (e *MemoryEngine) DeleteWhere(pred func(key string) bool) error {
	if !e.opened.Load() {
		return ErrEngineNotOpen
	}

	e.lockAll()
	defer e.unlockAll()

	for _, shard := range e.shards {
		for key := range shard.container {
			if pred(key) {
				delete(shard.container, key)
			}
		}
	}

	return nil
}

// LoadWhere returns a copy of every record whose key satisfies pred.
func (e *MemoryEngine) LoadWhere(pred func(key string) bool) ([]Entry, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	e.rlockAll()
	defer e.runlockAll()

	var entries []Entry

	for _, shard := range e.shards {
		for key, value := range shard.container {
			if !pred(key) {
				continue
			}

			entries = append(entries, Entry{
				Key:   key,
				Value: append([]byte(nil), value...),
			})
		}
	}

	return entries, nil
}

// LoadKeys returns every key in the engine.
func (e *MemoryEngine) LoadKeys() ([]string, error) {
	if !e.opened.Load() {
		return nil, ErrEngineNotOpen
	}

	e.rlockAll()
	defer e.runlockAll()

	keys := []string{}

	for _, shard := range e.shards {
		for key := range shard.container {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close marks the engine closed and drops its contents.
func (e *MemoryEngine) Close() error {
	if !e.opened.CompareAndSwap(true, false) {
		return nil
	}

	e.lockAll()
	defer e.unlockAll()

	for _, shard := range e.shards {
		shard.container = map[string][]byte{}
	}

	return nil
}

// shardFor maps a key to its owning shard.
func (e *MemoryEngine) shardFor(key string) *memoryShard {
	return e.shards[xxhash.Sum64String(key)&(memoryShardCount-1)]
}

func (e *MemoryEngine) lockAll() {
	for _, shard := range e.shards {
		shard.mu.Lock()
	}
}

func (e *MemoryEngine) unlockAll() {
	for _, shard := range e.shards {
		shard.mu.Unlock()
	}
}

func (e *MemoryEngine) rlockAll() {
	for _, shard := range e.shards {
		shard.mu.RLock()
	}
}

func (e *MemoryEngine) runlockAll() {
	for _, shard := range e.shards {
		shard.mu.RUnlock()
	}
}
