package marking

import (
	"sync"

	"github.com/Likeheart7/jdk12u/oop"
)

// PreservedMark pairs an object with its original header word.
type PreservedMark struct {
	Obj  oop.Ref
	Mark oop.Mark
}

// PreservedStack records header words that must survive the pass
// unmodified, for the restore phase that runs after compaction. Pushes
// are safe for concurrent use by all workers.
type PreservedStack struct {
	mu    sync.Mutex
	marks []PreservedMark
}

// Push records obj's original header word.
func (p *PreservedStack) Push(obj oop.Ref, mark oop.Mark) {
	p.mu.Lock()
	p.marks = append(p.marks, PreservedMark{Obj: obj, Mark: mark})
	p.mu.Unlock()
}

// Len returns the number of recorded headers.
func (p *PreservedStack) Len() int {
	p.mu.Lock()
	n := len(p.marks)
	p.mu.Unlock()
	return n
}

// Drain hands the recorded headers to the restore phase and empties the
// stack.
func (p *PreservedStack) Drain() []PreservedMark {
	p.mu.Lock()
	marks := p.marks
	p.marks = nil
	p.mu.Unlock()
	return marks
}
