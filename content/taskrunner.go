package content

import "sync"

// taskRunner executes posted functions one at a time, in FIFO order, on a
// single dedicated goroutine. It is the owner sequence for all pipeline
// state: anything that touches Database internals runs as a task here.
//
// Post never blocks, so a task may safely post follow-up work (including a
// completion callback that immediately submits another commit) without
// deadlocking the loop.
type taskRunner struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
	done    chan struct{}
}

// newTaskRunner creates a runner and starts its goroutine.
func newTaskRunner() *taskRunner {
	t := &taskRunner{
		done: make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)

	go t.run()

	return t
}

// post enqueues fn for execution. It reports false when the runner has been
// stopped and the task was dropped.
func (t *taskRunner) post(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}

	t.queue = append(t.queue, fn)
	t.cond.Signal()

	return true
}

// stop drains the remaining queue, shuts the goroutine down, and waits for it
// to exit. Tasks posted after stop returns are dropped.
func (t *taskRunner) stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		<-t.done

		return
	}

	t.stopped = true
	t.cond.Signal()
	t.mu.Unlock()

	<-t.done
}

func (t *taskRunner) run() {
	for {
		t.mu.Lock()
		for len(t.queue) == 0 && !t.stopped {
			t.cond.Wait()
		}

		if len(t.queue) == 0 {
			// Stopped with nothing left to drain.
			t.mu.Unlock()
			close(t.done)

			return
		}

		fn := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()

		fn()
	}
}
