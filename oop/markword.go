package oop

// Mark is an object header word. It packs the lock state, the GC age and
// the identity hash into a single word:
//
//	[ hash:25 | age:4 | lock:2 ]
//
// A word that carries no information beyond "unlocked" is called neutral;
// the pass may overwrite neutral words freely, anything else has to be
// copied aside first.
type Mark uint64

const (
	lockBits  = 2
	lockMask  = 1<<lockBits - 1
	ageBits   = 4
	ageShift  = lockBits
	ageMask   = 1<<ageBits - 1
	hashBits  = 25
	hashShift = ageShift + ageBits
	hashMask  = 1<<hashBits - 1
)

// Lock states, stored in the two low bits.
const (
	LockLocked   Mark = 0
	LockUnlocked Mark = 1
	LockMonitor  Mark = 2
)

// Neutral is the header of a freshly allocated object: unlocked, no
// identity hash, age zero.
const Neutral = LockUnlocked

// Lock returns the lock state bits.
func (m Mark) Lock() Mark {
	return m & lockMask
}

// Age returns the GC age.
func (m Mark) Age() uint {
	return uint(m>>ageShift) & ageMask
}

// Hash returns the identity hash, zero when none has been assigned.
func (m Mark) Hash() uint64 {
	return uint64(m>>hashShift) & hashMask
}

// WithAge returns a copy of m with the age field replaced.
func (m Mark) WithAge(age uint) Mark {
	return m&^(ageMask<<ageShift) | Mark(age&ageMask)<<ageShift
}

// WithHash returns a copy of m with the identity hash replaced.
func (m Mark) WithHash(hash uint64) Mark {
	return m&^(hashMask<<hashShift) | Mark(hash&hashMask)<<hashShift
}

// WithLock returns a copy of m with the lock state replaced.
func (m Mark) WithLock(lock Mark) Mark {
	return m&^lockMask | lock&lockMask
}

// MustBePreserved reports whether the header has to be copied out before
// the pass may overwrite or move the object. Only the neutral word is
// reconstructible afterwards.
func (m Mark) MustBePreserved() bool {
	return m != Neutral
}
