// Package heap provides the mark bitmap and an in-memory heap model for
// the marking engine to traverse. The model stands in for the object
// format layer of a real collector: it knows object kinds, header words,
// archive classification and the outgoing reference slots of every
// object. A heap is built up front and is read-only while a pass runs, so
// all collaborator methods are safe for concurrent use by the markers.
package heap

import (
	"slices"

	"github.com/Likeheart7/jdk12u/oop"
)

const asserts = true

// Kind distinguishes the two traversal shapes of heap objects.
type Kind uint8

const (
	KindOrdinary Kind = iota // fixed field list
	KindRefArray             // reference array, traversed in chunks
)

// Region classifies where an object lives.
//
// Closed-archive objects are immutable and permanently live: they are
// never marked and never enter the tracing frontier. Open-archive objects
// are marked normally but their headers are never preserved.
type Region uint8

const (
	RegionNormal Region = iota
	RegionOpenArchive
	RegionClosedArchive
)

// Object is one heap object in the model.
type Object struct {
	Kind   Kind
	Mark   oop.Mark
	Region Region
	Klass  *oop.Klass
	String bool // deduplication candidate

	Fields []oop.Ref // ordinary objects: outgoing reference slots
	Elems  []oop.Ref // reference arrays: element slots

	// Narrow shadows of the slots above, populated on Add when the heap
	// uses compressed references.
	nfields []oop.Narrow
	nelems  []oop.Narrow
}

// Obj returns an ordinary object with the given outgoing references.
func Obj(fields ...oop.Ref) *Object {
	return &Object{Kind: KindOrdinary, Mark: oop.Neutral, Fields: fields}
}

// Arr returns a reference array with the given elements.
func Arr(elems ...oop.Ref) *Object {
	return &Object{Kind: KindRefArray, Mark: oop.Neutral, Elems: elems}
}

// WithMark replaces the object's header word.
func (o *Object) WithMark(m oop.Mark) *Object {
	o.Mark = m
	return o
}

// WithRegion places the object in a region.
func (o *Object) WithRegion(r Region) *Object {
	o.Region = r
	return o
}

// WithKlass attaches class metadata.
func (o *Object) WithKlass(k *oop.Klass) *Object {
	o.Klass = k
	return o
}

// AsString flags the object as a string-deduplication candidate.
func (o *Object) AsString() *Object {
	o.String = true
	return o
}

func (o *Object) slots() []oop.Ref {
	if o.Kind == KindRefArray {
		return o.Elems
	}
	return o.Fields
}

// Heap is the object table the markers traverse.
type Heap struct {
	codec   *oop.Codec
	objects map[oop.Ref]*Object
	maxBit  uint64
}

// New returns an empty heap using native-width references.
func New() *Heap {
	return &Heap{objects: make(map[oop.Ref]*Object)}
}

// NewCompressed returns an empty heap whose reference slots store narrow
// encodings under the given codec.
func NewCompressed(c oop.Codec) *Heap {
	return &Heap{codec: &c, objects: make(map[oop.Ref]*Object)}
}

func (h *Heap) base() uint64 {
	if h.codec != nil {
		return h.codec.Base
	}
	return 0
}

func (h *Heap) shift() uint8 {
	if h.codec != nil {
		return h.codec.Shift
	}
	return 0
}

// RefAt returns the reference for the slot'th object slot of this heap.
// Slot zero is reserved for the nil reference.
func (h *Heap) RefAt(slot uint64) oop.Ref {
	if asserts && slot == 0 {
		panic("gc: slot 0 is the nil reference")
	}
	return oop.Ref(h.base() + slot<<h.shift())
}

// Add registers an object under r and returns r.
func (h *Heap) Add(r oop.Ref, o *Object) oop.Ref {
	if asserts {
		if r.IsNil() {
			panic("gc: adding object at nil reference")
		}
		if _, ok := h.objects[r]; ok {
			panic("gc: duplicate object reference")
		}
	}
	if h.codec != nil {
		// Build the narrow shadows the slot iterators hand out.
		o.nfields = encodeAll(*h.codec, o.Fields)
		o.nelems = encodeAll(*h.codec, o.Elems)
	}
	h.objects[r] = o
	if bit := (uint64(r) - h.base()) >> h.shift(); bit > h.maxBit {
		h.maxBit = bit
	}
	return r
}

func encodeAll(c oop.Codec, refs []oop.Ref) []oop.Narrow {
	if refs == nil {
		return nil
	}
	ns := make([]oop.Narrow, len(refs))
	for i, r := range refs {
		ns[i] = c.Encode(r)
	}
	return ns
}

// Object returns the object registered under r.
func (h *Heap) Object(r oop.Ref) *Object {
	o, ok := h.objects[r]
	if asserts && !ok {
		panic("gc: dangling object reference")
	}
	return o
}

// Len returns the number of objects in the heap.
func (h *Heap) Len() int {
	return len(h.objects)
}

// Refs returns every object reference, sorted for deterministic walks.
func (h *Heap) Refs() []oop.Ref {
	refs := make([]oop.Ref, 0, len(h.objects))
	for r := range h.objects {
		refs = append(refs, r)
	}
	slices.Sort(refs)
	return refs
}

// NewBitmap returns a mark bitmap sized to cover every object added so
// far.
func (h *Heap) NewBitmap() *Bitmap {
	return NewBitmap(h.base(), h.shift(), int(h.maxBit)+1)
}

// IsArray reports whether r is a reference array.
func (h *Heap) IsArray(r oop.Ref) bool {
	return h.Object(r).Kind == KindRefArray
}

// ArrayLen returns the element count of a reference array.
func (h *Heap) ArrayLen(r oop.Ref) int {
	o := h.Object(r)
	if asserts && o.Kind != KindRefArray {
		panic("gc: array length of non-array")
	}
	return len(o.Elems)
}

// KlassOf returns r's class metadata, nil when the model doesn't track it.
func (h *Heap) KlassOf(r oop.Ref) *oop.Klass {
	return h.Object(r).Klass
}

// Header returns r's current header word.
func (h *Heap) Header(r oop.Ref) oop.Mark {
	return h.Object(r).Mark
}

// IsClosedArchive reports whether r lives in a closed archive region.
func (h *Heap) IsClosedArchive(r oop.Ref) bool {
	return h.Object(r).Region == RegionClosedArchive
}

// IsOpenArchive reports whether r lives in an open archive region.
func (h *Heap) IsOpenArchive(r oop.Ref) bool {
	return h.Object(r).Region == RegionOpenArchive
}

// IsDedupCandidate reports whether r is a string-deduplication candidate.
func (h *Heap) IsDedupCandidate(r oop.Ref) bool {
	return h.Object(r).String
}

// IterateFields invokes visit once per outgoing reference slot of an
// ordinary object.
func (h *Heap) IterateFields(r oop.Ref, visit func(oop.Slot)) {
	o := h.Object(r)
	if asserts && o.Kind != KindOrdinary {
		panic("gc: field iteration over non-ordinary object")
	}
	h.iterate(o, 0, len(o.Fields), visit)
}

// IterateArrayRange invokes visit once per element slot in [from, to) of
// a reference array.
func (h *Heap) IterateArrayRange(r oop.Ref, from, to int, visit func(oop.Slot)) {
	o := h.Object(r)
	if asserts {
		if o.Kind != KindRefArray {
			panic("gc: array iteration over non-array")
		}
		if from < 0 || to > len(o.Elems) || from > to {
			panic("gc: array iteration range out of bounds")
		}
	}
	h.iterate(o, from, to, visit)
}

func (h *Heap) iterate(o *Object, from, to int, visit func(oop.Slot)) {
	if h.codec != nil {
		ns := o.nfields
		if o.Kind == KindRefArray {
			ns = o.nelems
		}
		for i := from; i < to; i++ {
			visit(oop.NarrowSlot{P: &ns[i], Codec: *h.codec})
		}
		return
	}
	ws := o.slots()
	for i := from; i < to; i++ {
		visit(oop.RefSlot{P: &ws[i]})
	}
}
