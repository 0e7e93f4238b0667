package marking

import (
	"sync"

	"github.com/Likeheart7/jdk12u/oop"
)

// DedupEntry is one queued deduplication candidate and the worker that
// marked it.
type DedupEntry struct {
	Obj    oop.Ref
	Worker int
}

// DedupQueue collects newly marked string-deduplication candidates for
// the table scan that runs after marking. The engine offers every object
// it wins the mark race for; the queue keeps only candidates. Enqueue is
// safe for concurrent use by all workers.
type DedupQueue struct {
	candidate func(oop.Ref) bool
	mu        sync.Mutex
	entries   []DedupEntry
}

// NewDedupQueue returns a queue accepting objects for which candidate
// reports true.
func NewDedupQueue(candidate func(oop.Ref) bool) *DedupQueue {
	return &DedupQueue{candidate: candidate}
}

// Enqueue records obj when it is a candidate and reports whether it was
// queued.
func (q *DedupQueue) Enqueue(obj oop.Ref, worker int) bool {
	if !q.candidate(obj) {
		return false
	}
	q.mu.Lock()
	q.entries = append(q.entries, DedupEntry{Obj: obj, Worker: worker})
	q.mu.Unlock()
	return true
}

// Len returns the number of queued candidates.
func (q *DedupQueue) Len() int {
	q.mu.Lock()
	n := len(q.entries)
	q.mu.Unlock()
	return n
}

// Drain hands the queued candidates to the deduplication scan and empties
// the queue.
func (q *DedupQueue) Drain() []DedupEntry {
	q.mu.Lock()
	entries := q.entries
	q.entries = nil
	q.mu.Unlock()
	return entries
}
