package oop_test

import (
	"testing"

	"github.com/Likeheart7/jdk12u/oop"
)

func TestCodecRoundTrip(t *testing.T) {
	c := oop.Codec{Base: 0x8000_0000, Shift: 3}

	for _, n := range []oop.Narrow{1, 2, 7, 1 << 20} {
		r := c.Decode(n)
		if r.IsNil() {
			t.Fatalf("Decode(%d) returned Nil", n)
		}
		if got := c.Encode(r); got != n {
			t.Errorf("Encode(Decode(%d)) = %d", n, got)
		}
	}

	if c.Decode(0) != oop.Nil {
		t.Errorf("Decode(0) = %#x, want Nil", uint64(c.Decode(0)))
	}
	if c.Encode(oop.Nil) != 0 {
		t.Errorf("Encode(Nil) = %d, want 0", c.Encode(oop.Nil))
	}
}

func TestSlots(t *testing.T) {
	r := oop.Ref(0x1234)
	if got := (oop.RefSlot{P: &r}).Load(); got != r {
		t.Errorf("RefSlot.Load = %#x, want %#x", uint64(got), uint64(r))
	}

	c := oop.Codec{Base: 0x1000, Shift: 2}
	n := c.Encode(oop.Ref(0x1000 + 4*9))
	s := oop.NarrowSlot{P: &n, Codec: c}
	if got := s.Load(); got != oop.Ref(0x1000+4*9) {
		t.Errorf("NarrowSlot.Load = %#x", uint64(got))
	}

	var empty oop.Narrow
	if got := (oop.NarrowSlot{P: &empty, Codec: c}).Load(); !got.IsNil() {
		t.Errorf("empty narrow slot loaded %#x, want Nil", uint64(got))
	}
}

func TestMarkWordFields(t *testing.T) {
	m := oop.Neutral.WithAge(7).WithHash(0x123456).WithLock(oop.LockMonitor)
	if m.Age() != 7 {
		t.Errorf("Age = %d, want 7", m.Age())
	}
	if m.Hash() != 0x123456 {
		t.Errorf("Hash = %#x, want 0x123456", m.Hash())
	}
	if m.Lock() != oop.LockMonitor {
		t.Errorf("Lock = %d, want monitor", m.Lock())
	}

	// Fields must not clobber each other.
	if back := m.WithHash(0).WithAge(0).WithLock(oop.LockUnlocked); back != oop.Neutral {
		t.Errorf("clearing all fields left %#x, want neutral %#x", uint64(back), uint64(oop.Neutral))
	}
}

func TestMustBePreserved(t *testing.T) {
	tests := []struct {
		name string
		mark oop.Mark
		want bool
	}{
		{"neutral", oop.Neutral, false},
		{"hashed", oop.Neutral.WithHash(42), true},
		{"aged", oop.Neutral.WithAge(3), true},
		{"locked", oop.Neutral.WithLock(oop.LockLocked), true},
		{"monitor", oop.Neutral.WithLock(oop.LockMonitor), true},
	}
	for _, tt := range tests {
		if got := tt.mark.MustBePreserved(); got != tt.want {
			t.Errorf("%s: MustBePreserved = %v, want %v", tt.name, got, tt.want)
		}
	}
}
