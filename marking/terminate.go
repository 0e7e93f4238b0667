package marking

import (
	"runtime"
	"sync/atomic"
)

// Terminator decides when a pass is complete. A worker whose own queues
// are empty offers to terminate; the offer succeeds only when the whole
// gang is idle at the same time and no shared work is visible. A worker's
// queues being empty is a local statement only: another worker can still
// publish work through the shared overflow stacks, so per-worker
// emptiness must never be conflated with pass completion.
type Terminator struct {
	workers int32
	idle    atomic.Int32
}

// NewTerminator returns a terminator for a gang of the given size.
func NewTerminator(workers int) *Terminator {
	if asserts && workers <= 0 {
		panic("gc: terminator needs at least one worker")
	}
	return &Terminator{workers: int32(workers)}
}

// Offer registers the caller as idle and spins until either the pass is
// complete (true) or shared work appears (false). peek reports whether
// any shared work is visible; a worker getting false must drain again
// before offering anew.
func (t *Terminator) Offer(peek func() bool) bool {
	t.idle.Add(1)
	for {
		if peek() {
			t.idle.Add(-1)
			return false
		}
		if t.idle.Load() == t.workers {
			return true
		}
		runtime.Gosched()
	}
}

// Reset prepares the terminator for another pass.
func (t *Terminator) Reset() {
	t.idle.Store(0)
}
