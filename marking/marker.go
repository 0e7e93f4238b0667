// Package marking implements the live-object tracing engine of a
// stop-the-world full collection. Starting from a set of roots, a gang of
// markers visits every reachable object exactly once, records it in a
// shared atomic bitmap and discovers its outgoing references.
//
// Each worker owns two bounded stacks: one of object references and one
// of array continuation tasks. Work beyond a stack's capacity spills to a
// shared overflow stack where idle workers pick it up. Large reference
// arrays are split into fixed-stride chunks, each an independently
// stealable unit, which is what balances the load on object graphs
// dominated by a few huge arrays. Traversal is always through these
// explicit stacks, never through call-stack recursion, so per-worker
// memory stays bounded on arbitrarily deep graphs.
//
// Losing the mark race to another worker is a normal outcome of parallel
// execution, not an error: the atomic bitmap guarantees a single winner
// per object and only the winner pushes the object for traversal, header
// preservation or deduplication.
package marking

import "github.com/Likeheart7/jdk12u/oop"

const asserts = true

// Model is the object-format contract the engine traverses through.
// Implementations must be safe for concurrent use during a pass.
type Model interface {
	IsArray(oop.Ref) bool
	ArrayLen(oop.Ref) int
	KlassOf(oop.Ref) *oop.Klass
	Header(oop.Ref) oop.Mark

	// IterateFields visits every outgoing reference slot of an ordinary
	// object. IterateArrayRange visits the element slots in [from, to).
	IterateFields(obj oop.Ref, visit func(oop.Slot))
	IterateArrayRange(obj oop.Ref, from, to int, visit func(oop.Slot))

	IsClosedArchive(oop.Ref) bool
	IsOpenArchive(oop.Ref) bool
}

// Bitmap is the shared mark bitmap contract. TryMark must be atomic:
// true iff the call transitioned the bit from unmarked to marked.
type Bitmap interface {
	TryMark(oop.Ref) bool
	IsMarked(oop.Ref) bool
}

// ArrayTask is a continuation for a partially scanned reference array:
// scanning resumes at Index. Tasks are never created for empty arrays and
// Index is always a valid element index.
type ArrayTask struct {
	Array oop.Ref
	Index int
}

// Config tunes a pass.
type Config struct {
	// StackCap bounds each worker's local stacks; work beyond it spills
	// to the shared overflow stacks.
	StackCap int
	// ChunkStride bounds how many array slots one continuation task
	// scans.
	ChunkStride int
	// Verify re-walks the marked graph after the pass to check that the
	// same set would be discovered again. Debug aid.
	Verify bool
}

const (
	defaultStackCap    = 4096
	defaultChunkStride = 512
)

func (c Config) withDefaults() Config {
	if c.StackCap <= 0 {
		c.StackCap = defaultStackCap
	}
	if c.ChunkStride <= 0 {
		c.ChunkStride = defaultChunkStride
	}
	return c
}

// Shared is the cross-worker mutable state of one pass.
type Shared struct {
	ObjOverflow   OverflowStack[oop.Ref]
	ArrayOverflow OverflowStack[ArrayTask]
	Preserved     PreservedStack
	Dedup         *DedupQueue // nil when deduplication is disabled
}

// Marker is one worker's tracing engine. All methods are owner-only; the
// shared state it touches (bitmap, overflow stacks, preserved stack,
// dedup queue) synchronizes internally.
type Marker struct {
	id     int
	model  Model
	bitmap Bitmap
	shared *Shared

	objs   *WorkStack[oop.Ref]
	arrays *WorkStack[ArrayTask]
	stride int

	stats Stats
}

// NewMarker returns worker id's engine for one pass.
func NewMarker(id int, model Model, bitmap Bitmap, shared *Shared, cfg Config) *Marker {
	cfg = cfg.withDefaults()
	return &Marker{
		id:     id,
		model:  model,
		bitmap: bitmap,
		shared: shared,
		objs:   NewWorkStack[oop.Ref](cfg.StackCap, &shared.ObjOverflow),
		arrays: NewWorkStack[ArrayTask](cfg.StackCap, &shared.ArrayOverflow),
		stride: cfg.ChunkStride,
	}
}

// MarkAndPush loads the reference held in s and, if this worker wins the
// mark race, queues the object for traversal. A nil slot and an already
// marked object are both no-ops.
func (m *Marker) MarkAndPush(s oop.Slot) {
	obj := s.Load()
	if obj.IsNil() {
		return
	}
	if m.MarkObject(obj) {
		m.objs.Push(obj)
		if asserts && !m.bitmap.IsMarked(obj) {
			panic("gc: pushed object not marked")
		}
	} else if asserts && !m.bitmap.IsMarked(obj) && !m.model.IsClosedArchive(obj) {
		panic("gc: mark race lost but object not marked by anyone")
	}
}

// MarkRoot marks a root reference discovered by the caller's root scan.
func (m *Marker) MarkRoot(root oop.Ref) {
	m.MarkAndPush(oop.RefSlot{P: &root})
}

// MarkObject attempts to claim obj for this pass. Closed-archive objects
// are permanently live and never enter the frontier, so they report false
// without touching the bitmap. Losing the bitmap race also reports false.
//
// The winner owns the object's side effects: its header is captured
// before the pass may overwrite it (unless the object is open-archive)
// and it is offered to the deduplication queue when that is enabled.
func (m *Marker) MarkObject(obj oop.Ref) bool {
	if m.model.IsClosedArchive(obj) {
		return false
	}
	if !m.bitmap.TryMark(obj) {
		m.stats.RacesLost++
		return false
	}
	m.stats.Marked++

	mark := m.model.Header(obj)
	if mark.MustBePreserved() && !m.model.IsOpenArchive(obj) {
		m.shared.Preserved.Push(obj, mark)
		m.stats.Preserved++
	}
	if m.shared.Dedup != nil {
		if m.shared.Dedup.Enqueue(obj, m.id) {
			m.stats.DedupEnqueued++
		}
	}
	return true
}

// FollowObject visits every outgoing edge of a marked object. Arrays are
// handled through the continuation queue so they can be split into
// chunks; everything else iterates its field slots directly.
func (m *Marker) FollowObject(obj oop.Ref) {
	if asserts && !m.bitmap.IsMarked(obj) {
		panic("gc: following unmarked object")
	}
	m.FollowKlass(m.model.KlassOf(obj))
	if m.model.IsArray(obj) {
		m.followArray(obj)
		return
	}
	m.model.IterateFields(obj, m.MarkAndPush)
}

// FollowKlass keeps class metadata reachable. The one edge of interest is
// the class-loader holder object.
func (m *Marker) FollowKlass(k *oop.Klass) {
	if k == nil {
		return
	}
	m.FollowCLD(k.Loader)
}

// FollowCLD marks the representative object of a class loader.
func (m *Marker) FollowCLD(cld *oop.ClassLoaderData) {
	if cld == nil {
		return
	}
	holder := cld.Holder
	m.MarkAndPush(oop.RefSlot{P: &holder})
}

func (m *Marker) followArray(array oop.Ref) {
	// Empty arrays never produce a task; there is nothing to scan.
	if m.model.ArrayLen(array) > 0 {
		m.pushArrayTask(array, 0)
	}
}

func (m *Marker) pushArrayTask(array oop.Ref, index int) {
	if asserts && (index < 0 || index >= m.model.ArrayLen(array)) {
		panic("gc: array task index out of range")
	}
	m.arrays.Push(ArrayTask{Array: array, Index: index})
}

// followArrayChunk scans one stride of array elements. The continuation
// for the remainder is pushed before scanning the current slice so an
// idle worker can steal it while this worker is busy.
func (m *Marker) followArrayChunk(t ArrayTask) {
	length := m.model.ArrayLen(t.Array)
	end := t.Index + m.stride
	if end > length {
		end = length
	}
	if end < length {
		m.pushArrayTask(t.Array, end)
	}
	m.model.IterateArrayRange(t.Array, t.Index, end, m.MarkAndPush)
	m.stats.Chunks++
}

// Drain processes this worker's queues until both are empty. Discovered
// objects are exhausted before each array chunk, and array continuations
// are taken one at a time, which keeps the object stack shallow.
func (m *Marker) Drain() {
	for {
		for {
			obj, ok := m.objs.Pop()
			if !ok {
				break
			}
			m.FollowObject(obj)
		}
		if t, ok := m.arrays.Pop(); ok {
			m.followArrayChunk(t)
		}
		if m.Empty() {
			return
		}
	}
}

// Empty reports whether this worker currently sees no work, including
// the shared overflow stacks. Another worker may publish work right
// after; pass completion is the Terminator's call.
func (m *Marker) Empty() bool {
	return m.objs.Empty() && m.arrays.Empty()
}

// Stats returns what this worker has done so far this pass.
func (m *Marker) Stats() Stats {
	s := m.stats
	s.Spilled = m.objs.spills + m.arrays.spills
	return s
}
