// Package oop defines the object model vocabulary shared by the heap and
// the marking engine: identity references in native and compressed width,
// object header words, and class metadata.
package oop

// Ref is an opaque handle to a heap object. Equality is identity. The zero
// value is the nil reference.
type Ref uint64

// Nil is the absent reference. Traversal treats it as a no-op.
const Nil Ref = 0

// IsNil reports whether r refers to no object.
func (r Ref) IsNil() bool {
	return r == Nil
}

// Narrow is a compressed reference as stored in object fields of heaps
// that use narrow encoding. The zero value encodes Nil.
type Narrow uint32

// Codec widens and compresses narrow references against a heap base.
type Codec struct {
	Base  uint64
	Shift uint8
}

// Decode widens a compressed reference. Zero decodes to Nil.
func (c Codec) Decode(n Narrow) Ref {
	if n == 0 {
		return Nil
	}
	return Ref(c.Base + uint64(n)<<c.Shift)
}

// Encode compresses a native-width reference. Nil encodes to zero.
func (c Codec) Encode(r Ref) Narrow {
	if r.IsNil() {
		return 0
	}
	return Narrow((uint64(r) - c.Base) >> c.Shift)
}

// Slot is a memory location holding a possibly compressed reference. Load
// returns the decoded native-width reference, Nil when the slot is empty.
type Slot interface {
	Load() Ref
}

// RefSlot is a slot holding a native-width reference.
type RefSlot struct {
	P *Ref
}

func (s RefSlot) Load() Ref {
	return *s.P
}

// NarrowSlot is a slot holding a compressed reference.
type NarrowSlot struct {
	P     *Narrow
	Codec Codec
}

func (s NarrowSlot) Load() Ref {
	return s.Codec.Decode(*s.P)
}
