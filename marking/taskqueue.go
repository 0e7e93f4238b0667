package marking

import "sync"

// OverflowStack is the shared spill stack absorbing work that a worker's
// bounded local stack cannot hold. Push never blocks and never drops
// work; all operations are safe for concurrent use.
type OverflowStack[T any] struct {
	mu    sync.Mutex
	items []T
}

// Push appends v to the shared stack.
func (s *OverflowStack[T]) Push(v T) {
	s.mu.Lock()
	s.items = append(s.items, v)
	s.mu.Unlock()
}

// Pop removes and returns the most recently pushed entry.
func (s *OverflowStack[T]) Pop() (T, bool) {
	s.mu.Lock()
	n := len(s.items)
	if n == 0 {
		s.mu.Unlock()
		var zero T
		return zero, false
	}
	v := s.items[n-1]
	s.items = s.items[:n-1]
	s.mu.Unlock()
	return v, true
}

// Empty reports whether the stack currently holds no entries.
func (s *OverflowStack[T]) Empty() bool {
	s.mu.Lock()
	empty := len(s.items) == 0
	s.mu.Unlock()
	return empty
}

// WorkStack is a per-worker bounded LIFO backed by a shared overflow
// stack. Pushing beyond the local capacity routes to the overflow stack.
// Pops prefer overflow entries so that work made visible to idle workers
// is consumed first; only the owning worker may push or pop.
type WorkStack[T any] struct {
	local    []T
	overflow *OverflowStack[T]
	spills   uint64
}

// NewWorkStack returns a stack with the given local capacity, spilling to
// overflow when full.
func NewWorkStack[T any](capacity int, overflow *OverflowStack[T]) *WorkStack[T] {
	if asserts && capacity <= 0 {
		panic("gc: work stack needs a positive capacity")
	}
	return &WorkStack[T]{
		local:    make([]T, 0, capacity),
		overflow: overflow,
	}
}

// Push adds v to the local stack, or to the shared overflow stack when
// the local stack is full.
func (s *WorkStack[T]) Push(v T) {
	if len(s.local) == cap(s.local) {
		s.overflow.Push(v)
		s.spills++
		return
	}
	s.local = append(s.local, v)
}

// Pop drains shared overflow entries before local ones.
func (s *WorkStack[T]) Pop() (T, bool) {
	if v, ok := s.overflow.Pop(); ok {
		return v, true
	}
	n := len(s.local)
	if n == 0 {
		var zero T
		return zero, false
	}
	v := s.local[n-1]
	s.local = s.local[:n-1]
	return v, true
}

// Empty is true only when both the local stack and the shared overflow
// stack hold nothing. Another worker may publish to the overflow stack
// right after; pass-wide emptiness is the terminator's decision.
func (s *WorkStack[T]) Empty() bool {
	return len(s.local) == 0 && s.overflow.Empty()
}
