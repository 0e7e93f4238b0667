package heap

import (
	"math/bits"
	"sync/atomic"

	"github.com/Likeheart7/jdk12u/oop"
)

// Bitmap records the objects discovered live during a pass, one bit per
// heap-aligned slot. All operations are safe for concurrent use; a bit is
// never cleared while a pass is running.
type Bitmap struct {
	base  uint64
	shift uint8
	slots uint64
	words []uint64
}

// NewBitmap returns a bitmap covering slots object slots starting at base.
// A reference maps to bit (ref-base)>>shift.
func NewBitmap(base uint64, shift uint8, slots int) *Bitmap {
	return &Bitmap{
		base:  base,
		shift: shift,
		slots: uint64(slots),
		words: make([]uint64, (slots+63)/64),
	}
}

func (b *Bitmap) bit(r oop.Ref) uint64 {
	if asserts {
		if r.IsNil() {
			panic("gc: bitmap lookup of nil reference")
		}
		if uint64(r) < b.base {
			panic("gc: reference below bitmap base")
		}
	}
	bit := (uint64(r) - b.base) >> b.shift
	if asserts && bit >= b.slots {
		panic("gc: reference beyond bitmap")
	}
	return bit
}

// TryMark sets the mark bit for r. It returns true iff this call
// transitioned the bit from unmarked to marked; losing the race to a
// concurrent caller returns false.
func (b *Bitmap) TryMark(r oop.Ref) bool {
	bit := b.bit(r)
	word := &b.words[bit/64]
	mask := uint64(1) << (bit % 64)
	for {
		old := atomic.LoadUint64(word)
		if old&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint64(word, old, old|mask) {
			return true
		}
	}
}

// IsMarked reports whether r has been marked this pass.
func (b *Bitmap) IsMarked(r oop.Ref) bool {
	bit := b.bit(r)
	return atomic.LoadUint64(&b.words[bit/64])&(1<<(bit%64)) != 0
}

// Count returns the number of marked slots. It is not atomic with respect
// to concurrent marking and is meant for use after a pass.
func (b *Bitmap) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount64(atomic.LoadUint64(&b.words[i]))
	}
	return n
}

// Reset clears every bit so the bitmap can serve another pass. Must not
// run concurrently with marking.
func (b *Bitmap) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}
