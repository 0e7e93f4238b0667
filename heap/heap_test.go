package heap_test

import (
	"testing"

	"github.com/Likeheart7/jdk12u/heap"
	"github.com/Likeheart7/jdk12u/oop"
)

func TestHeapFieldIteration(t *testing.T) {
	h := heap.New()
	b := h.Add(h.RefAt(2), heap.Obj())
	c := h.Add(h.RefAt(3), heap.Obj())
	a := h.Add(h.RefAt(1), heap.Obj(b, oop.Nil, c))

	var got []oop.Ref
	h.IterateFields(a, func(s oop.Slot) {
		got = append(got, s.Load())
	})
	want := []oop.Ref{b, oop.Nil, c}
	if len(got) != len(want) {
		t.Fatalf("visited %d slots, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %#x, want %#x", i, uint64(got[i]), uint64(want[i]))
		}
	}
}

func TestHeapCompressedIteration(t *testing.T) {
	codec := oop.Codec{Base: 0x10000, Shift: 3}
	h := heap.NewCompressed(codec)
	b := h.Add(h.RefAt(2), heap.Obj())
	a := h.Add(h.RefAt(1), heap.Obj(b, oop.Nil))

	var got []oop.Ref
	h.IterateFields(a, func(s oop.Slot) {
		if _, ok := s.(oop.NarrowSlot); !ok {
			t.Errorf("compressed heap handed out %T, want NarrowSlot", s)
		}
		got = append(got, s.Load())
	})
	if len(got) != 2 || got[0] != b || got[1] != oop.Nil {
		t.Fatalf("decoded slots = %v, want [%#x, Nil]", got, uint64(b))
	}
}

func TestHeapArrayRange(t *testing.T) {
	h := heap.New()
	x := h.Add(h.RefAt(2), heap.Obj())
	y := h.Add(h.RefAt(3), heap.Obj())
	arr := h.Add(h.RefAt(1), heap.Arr(x, y, oop.Nil, x))

	if !h.IsArray(arr) {
		t.Fatal("IsArray = false for array")
	}
	if h.ArrayLen(arr) != 4 {
		t.Fatalf("ArrayLen = %d, want 4", h.ArrayLen(arr))
	}

	var got []oop.Ref
	h.IterateArrayRange(arr, 1, 3, func(s oop.Slot) {
		got = append(got, s.Load())
	})
	if len(got) != 2 || got[0] != y || !got[1].IsNil() {
		t.Fatalf("range [1,3) = %v", got)
	}
}

func TestHeapClassification(t *testing.T) {
	h := heap.New()
	closed := h.Add(h.RefAt(1), heap.Obj().WithRegion(heap.RegionClosedArchive))
	open := h.Add(h.RefAt(2), heap.Obj().WithRegion(heap.RegionOpenArchive))
	str := h.Add(h.RefAt(3), heap.Obj().AsString())

	if !h.IsClosedArchive(closed) || h.IsOpenArchive(closed) {
		t.Error("closed archive misclassified")
	}
	if !h.IsOpenArchive(open) || h.IsClosedArchive(open) {
		t.Error("open archive misclassified")
	}
	if h.IsClosedArchive(str) || h.IsOpenArchive(str) {
		t.Error("normal object misclassified")
	}
	if !h.IsDedupCandidate(str) || h.IsDedupCandidate(open) {
		t.Error("dedup candidate misclassified")
	}
}

func TestHeapBitmapCoversAllRefs(t *testing.T) {
	codec := oop.Codec{Base: 0x4000, Shift: 4}
	h := heap.NewCompressed(codec)
	var refs []oop.Ref
	for i := uint64(1); i <= 100; i++ {
		refs = append(refs, h.Add(h.RefAt(i), heap.Obj()))
	}

	b := h.NewBitmap()
	for _, r := range refs {
		if !b.TryMark(r) {
			t.Fatalf("TryMark failed for %#x", uint64(r))
		}
	}
	if b.Count() != len(refs) {
		t.Errorf("Count = %d, want %d", b.Count(), len(refs))
	}
}

func TestHeapHeaderAndKlass(t *testing.T) {
	h := heap.New()
	k := &oop.Klass{Name: "Node", Loader: &oop.ClassLoaderData{Holder: h.RefAt(9)}}
	m := oop.Neutral.WithHash(77)
	r := h.Add(h.RefAt(1), heap.Obj().WithMark(m).WithKlass(k))

	if h.Header(r) != m {
		t.Errorf("Header = %#x, want %#x", uint64(h.Header(r)), uint64(m))
	}
	if h.KlassOf(r) != k {
		t.Error("KlassOf returned a different klass")
	}
}
