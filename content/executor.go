package content

import (
	"github.com/contentkv/contentdb/content/store"
)

// operationExecutor dispatches one operation at a time to the engine.
//
// execute produces exactly one completion per call, always from a goroutine
// other than the caller's, mirroring the engine's asynchronous nature. The
// executor never retries; retry policy belongs above the pipeline.
type operationExecutor struct {
	engine store.Engine
	codec  store.Codec
}

// execute dispatches op and invokes onDone exactly once with a nil error on
// success. An unrecognized operation kind fails immediately with
// ErrUnsupportedOperation rather than silently succeeding.
func (e *operationExecutor) execute(op Operation, onDone func(err error)) {
	switch op.Type() {
	case OperationUpsert:
		go func() {
			value, err := e.codec.Encode(store.Record{Key: op.Key(), Data: op.Value()})
			if err != nil {
				onDone(err)

				return
			}

			onDone(e.engine.BulkUpdate([]store.Entry{{Key: op.Key(), Value: value}}, nil))
		}()
	case OperationDelete:
		go func() {
			onDone(e.engine.BulkUpdate(nil, []string{op.Key()}))
		}()
	case OperationDeleteByPrefix:
		go func() {
			onDone(e.engine.DeleteWhere(KeyHasPrefix(op.Prefix())))
		}()
	case OperationDeleteAll:
		// Identical matching semantics to a prefix delete with an empty prefix.
		go func() {
			onDone(e.engine.DeleteWhere(KeyHasPrefix("")))
		}()
	default:
		go func() {
			onDone(ErrUnsupportedOperation)
		}()
	}
}
