package content

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/contentkv/contentdb/content/store"
)

type (
	// CommitCallback reports the terminal result of one Commit call.
	CommitCallback func(ok bool)

	// LoadCallback reports the result of a content load. On failure the
	// results slice is nil.
	LoadCallback func(ok bool, results []KeyValue)

	// KeysCallback reports the result of a key listing. On failure the keys
	// slice is nil.
	KeysCallback func(ok bool, keys []string)
)

// KeyValue is one loaded record: the key and the caller's opaque payload.
type KeyValue struct {
	Key  string
	Data []byte
}

// initState tracks the engine's one-shot open transition.
type initState int32

const (
	stateNotInitialized initState = iota
	stateReady
	stateFailed
)

// commitState is a mutation batch travelling through the pipeline, together
// with the single-use callback that reports its terminal result.
type commitState struct {
	id       string
	mutation *Mutation
	onDone   CommitCallback
	start    time.Time
}

// Database applies ordered, fail-fast mutation batches against a key-value
// engine and serves filtered reads over the same records.
//
// Concurrency model: all pipeline state lives on a single owner goroutine.
// Public methods may be called from any goroutine; they post work onto the
// owner loop and return immediately. Every callback fires exactly once; for
// accepted requests that is on the owner goroutine, so callbacks must not
// block: hand results off and return. Requests rejected after Close complete
// on their own goroutine. Engine I/O runs off the owner loop, one mutation operation in
// flight at a time.
//
// The engine opens asynchronously. Requests arriving before the open
// completes are queued and replayed in arrival order once it does; if the
// open fails, every queued and future request completes with ok=false.
type Database struct {
	engine   store.Engine
	codec    store.Codec
	executor operationExecutor
	logger   zerolog.Logger
	metrics  Metrics

	runner *taskRunner
	closed atomic.Bool
	state  atomic.Int32

	// Owner-loop state. Only runner tasks may touch these.
	waiting       []func()
	commits       []*commitState
	inFlightReads int
	closing       bool
	shutdownDone  chan<- error
}

// Open builds the engine and codec named by opts and returns a Database that
// is initializing in the background. Use IsReady or simply issue requests;
// they are queued until the open completes.
func Open(opts Options) (*Database, error) {
	opts = opts.withDefaults()

	engine, err := opts.buildEngine()
	if err != nil {
		return nil, err
	}

	codec, err := opts.buildCodec()
	if err != nil {
		return nil, err
	}

	return NewDatabase(engine, codec, opts), nil
}

// NewDatabase wires a Database over a caller-supplied engine and codec and
// begins opening the engine asynchronously. Most callers should use Open;
// NewDatabase exists for custom Engine implementations and for tests.
func NewDatabase(engine store.Engine, codec store.Codec, opts Options) *Database {
	opts = opts.withDefaults()

	d := &Database{
		engine:   engine,
		codec:    codec,
		executor: operationExecutor{engine: engine, codec: codec},
		logger:   opts.logger(),
		metrics:  opts.Metrics,
		runner:   newTaskRunner(),
	}

	go func() {
		err := engine.Open()
		d.runner.post(func() { d.onOpened(err) })
	}()

	return d
}

// IsReady reports whether the engine has finished opening successfully.
func (d *Database) IsReady() bool {
	return initState(d.state.Load()) == stateReady
}

// Commit applies the mutation's operations strictly in order, one at a time.
// The first failing operation halts the batch: later operations are never
// dispatched, earlier ones stay applied, and onDone fires with false. An
// empty (or nil) mutation succeeds without touching the engine.
//
// Batches never interleave: a Commit submitted while another is in flight
// waits its turn.
//
// The mutation is owned by the pipeline from this call on and must not be
// reused.
func (d *Database) Commit(mutation *Mutation, onDone CommitCallback) {
	if d.closed.Load() || !d.runner.post(func() { d.handleCommit(mutation, onDone) }) {
		failCommitCallback(onDone)
	}
}

// LoadContent loads every record whose key is in keys. Result order is
// engine-determined.
func (d *Database) LoadContent(keys []string, onLoaded LoadCallback) {
	pred := KeyInSet(keys)

	if d.closed.Load() || !d.runner.post(func() { d.handleLoad(pred, onLoaded) }) {
		failLoadCallback(onLoaded)
	}
}

// LoadContentByPrefix loads every record whose key starts with prefix.
// The empty prefix loads everything.
func (d *Database) LoadContentByPrefix(prefix string, onLoaded LoadCallback) {
	pred := KeyHasPrefix(prefix)

	if d.closed.Load() || !d.runner.post(func() { d.handleLoad(pred, onLoaded) }) {
		failLoadCallback(onLoaded)
	}
}

// LoadAllKeys lists every stored key, without values.
func (d *Database) LoadAllKeys(onKeys KeysCallback) {
	if d.closed.Load() || !d.runner.post(func() { d.handleLoadKeys(onKeys) }) {
		failKeysCallback(onKeys)
	}
}

// Close fails queued work, waits for the operation or read currently in
// flight, closes the engine, and stops the owner loop. Close is idempotent;
// requests issued after Close complete with ok=false.
func (d *Database) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	done := make(chan error, 1)
	if !d.runner.post(func() { d.beginShutdown(done) }) {
		return nil
	}

	err := <-done
	d.runner.stop()

	return err
}

// onOpened performs the one-shot NotInitialized -> Ready/Failed transition
// and replays requests that arrived while the open was in flight.
func (d *Database) onOpened(err error) {
	if err != nil {
		d.state.Store(int32(stateFailed))
		d.logger.Error().Err(err).Msg("content database open failed")
	} else {
		d.state.Store(int32(stateReady))
		d.logger.Debug().Msg("content database ready")
	}

	waiting := d.waiting
	d.waiting = nil

	for _, replay := range waiting {
		replay()
	}

	d.maybeFinalize()
}

func (d *Database) handleCommit(mutation *Mutation, onDone CommitCallback) {
	switch {
	case d.closing:
		completeCommitCallback(onDone, false)
	case initState(d.state.Load()) == stateNotInitialized:
		d.waiting = append(d.waiting, func() { d.handleCommit(mutation, onDone) })
	case initState(d.state.Load()) == stateFailed:
		completeCommitCallback(onDone, false)
	default:
		d.startCommit(mutation, onDone)
	}
}

func (d *Database) startCommit(mutation *Mutation, onDone CommitCallback) {
	size := 0
	if mutation != nil {
		size = mutation.Size()
	}

	d.metrics.ObserveCommitSize(size)

	// No-op commits always succeed without an engine call.
	if size == 0 {
		completeCommitCallback(onDone, true)

		return
	}

	c := &commitState{
		id:       uuid.NewString(),
		mutation: mutation,
		onDone:   onDone,
		start:    time.Now(),
	}

	d.commits = append(d.commits, c)
	d.logger.Debug().Str("commit", c.id).Int("operations", size).Msg("mutation submitted")

	// Only the front commit is ever in flight.
	if len(d.commits) == 1 {
		d.advance(c)
	}
}

// advance pops the front operation of the in-flight commit and dispatches it.
// The executor's completion is posted back onto the owner loop.
func (d *Database) advance(c *commitState) {
	op := c.mutation.TakeFirst()

	d.executor.execute(op, func(err error) {
		d.runner.post(func() { d.onOperationDone(c, op, err) })
	})
}

func (d *Database) onOperationDone(c *commitState, op Operation, err error) {
	if err != nil {
		// Halt the batch: everything already applied stays applied, the
		// remaining operations are never dispatched.
		d.logger.Warn().
			Str("commit", c.id).
			Str("operation", op.Type().String()).
			Err(err).
			Msg("operation failed, halting mutation")
		d.finishCommit(c, false)

		return
	}

	if c.mutation.Empty() {
		d.metrics.ObserveCommitDuration(time.Since(c.start))
		d.logger.Debug().Str("commit", c.id).Msg("mutation committed")
		d.finishCommit(c, true)

		return
	}

	d.advance(c)
}

// finishCommit retires the front commit, reports its result, and starts the
// next queued commit if any.
func (d *Database) finishCommit(c *commitState, ok bool) {
	d.commits = d.commits[1:]

	completeCommitCallback(c.onDone, ok)

	if !d.closing && len(d.commits) > 0 {
		d.advance(d.commits[0])

		return
	}

	d.maybeFinalize()
}

func (d *Database) handleLoad(pred func(key string) bool, onLoaded LoadCallback) {
	switch {
	case d.closing:
		completeLoadCallback(onLoaded, false, nil)
	case initState(d.state.Load()) == stateNotInitialized:
		d.waiting = append(d.waiting, func() { d.handleLoad(pred, onLoaded) })
	case initState(d.state.Load()) == stateFailed:
		completeLoadCallback(onLoaded, false, nil)
	default:
		start := time.Now()
		d.inFlightReads++

		go func() {
			entries, err := d.engine.LoadWhere(pred)
			d.runner.post(func() { d.onLoaded(start, onLoaded, entries, err) })
		}()
	}
}

func (d *Database) onLoaded(start time.Time, onLoaded LoadCallback, entries []store.Entry, err error) {
	d.inFlightReads--

	ok := err == nil
	if err != nil {
		d.logger.Warn().Err(err).Msg("content load failed")
	}

	var results []KeyValue

	if ok {
		results = make([]KeyValue, 0, len(entries))

		for _, entry := range entries {
			record, decodeErr := d.codec.Decode(entry.Value)
			if decodeErr != nil {
				d.logger.Warn().Str("key", entry.Key).Err(decodeErr).Msg("stored record is unreadable")

				ok = false
				results = nil

				break
			}

			results = append(results, KeyValue{Key: record.Key, Data: record.Data})
		}
	}

	d.metrics.ObserveLoadDuration(time.Since(start))
	completeLoadCallback(onLoaded, ok, results)
	d.maybeFinalize()
}

func (d *Database) handleLoadKeys(onKeys KeysCallback) {
	switch {
	case d.closing:
		completeKeysCallback(onKeys, false, nil)
	case initState(d.state.Load()) == stateNotInitialized:
		d.waiting = append(d.waiting, func() { d.handleLoadKeys(onKeys) })
	case initState(d.state.Load()) == stateFailed:
		completeKeysCallback(onKeys, false, nil)
	default:
		start := time.Now()
		d.inFlightReads++

		go func() {
			keys, err := d.engine.LoadKeys()
			d.runner.post(func() { d.onKeysLoaded(start, onKeys, keys, err) })
		}()
	}
}

func (d *Database) onKeysLoaded(start time.Time, onKeys KeysCallback, keys []string, err error) {
	d.inFlightReads--

	if err != nil {
		d.logger.Warn().Err(err).Msg("key load failed")

		keys = nil
	} else {
		d.metrics.ObserveKeyCount(len(keys))
	}

	d.metrics.ObserveLoadKeysDuration(time.Since(start))
	completeKeysCallback(onKeys, err == nil, keys)
	d.maybeFinalize()
}

// beginShutdown fails all queued work, then waits (via maybeFinalize) for the
// open, the in-flight operation, and in-flight reads to drain before closing
// the engine.
func (d *Database) beginShutdown(done chan<- error) {
	d.closing = true
	d.shutdownDone = done

	waiting := d.waiting
	d.waiting = nil

	// Replayed requests observe d.closing and complete with ok=false.
	for _, replay := range waiting {
		replay()
	}

	// Commits queued behind the in-flight one will never start; fail them now.
	if len(d.commits) > 1 {
		for _, c := range d.commits[1:] {
			completeCommitCallback(c.onDone, false)
		}

		d.commits = d.commits[:1]
	}

	d.maybeFinalize()
}

// maybeFinalize closes the engine and releases Close() once shutdown has been
// requested and nothing is in flight.
func (d *Database) maybeFinalize() {
	if d.shutdownDone == nil {
		return
	}

	// The open transition has not happened yet; onOpened will finalize.
	if initState(d.state.Load()) == stateNotInitialized {
		return
	}

	if len(d.commits) > 0 || d.inFlightReads > 0 {
		return
	}

	d.shutdownDone <- d.engine.Close()
	d.shutdownDone = nil
}

// Callback helpers. Each callback is invoked at most once; nil callbacks are
// permitted and ignored.

func completeCommitCallback(onDone CommitCallback, ok bool) {
	if onDone != nil {
		onDone(ok)
	}
}

func completeLoadCallback(onLoaded LoadCallback, ok bool, results []KeyValue) {
	if onLoaded != nil {
		onLoaded(ok, results)
	}
}

func completeKeysCallback(onKeys KeysCallback, ok bool, keys []string) {
	if onKeys != nil {
		onKeys(ok, keys)
	}
}

// fail*Callback schedule an ok=false completion for requests rejected before
// they reach the owner loop (database already closed).

func failCommitCallback(onDone CommitCallback) {
	if onDone != nil {
		go onDone(false)
	}
}

func failLoadCallback(onLoaded LoadCallback) {
	if onLoaded != nil {
		go onLoaded(false, nil)
	}
}

func failKeysCallback(onKeys KeysCallback) {
	if onKeys != nil {
		go onKeys(false, nil)
	}
}
