package heap_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Likeheart7/jdk12u/heap"
	"github.com/Likeheart7/jdk12u/oop"
)

func TestBitmapMarkOnce(t *testing.T) {
	b := heap.NewBitmap(0, 0, 128)
	r := oop.Ref(17)

	if b.IsMarked(r) {
		t.Fatal("fresh bitmap reports marked")
	}
	if !b.TryMark(r) {
		t.Fatal("first TryMark failed")
	}
	if b.TryMark(r) {
		t.Fatal("second TryMark succeeded")
	}
	if !b.IsMarked(r) {
		t.Fatal("marked object reports unmarked")
	}
	if b.Count() != 1 {
		t.Errorf("Count = %d, want 1", b.Count())
	}

	b.Reset()
	if b.IsMarked(r) || b.Count() != 0 {
		t.Error("Reset did not clear the bitmap")
	}
}

func TestBitmapBaseAndShift(t *testing.T) {
	b := heap.NewBitmap(0x8000, 3, 64)
	r := oop.Ref(0x8000 + 8*10)
	if !b.TryMark(r) {
		t.Fatal("TryMark failed for shifted reference")
	}
	if !b.IsMarked(r) {
		t.Fatal("shifted reference not marked")
	}
	if b.IsMarked(oop.Ref(0x8000 + 8*11)) {
		t.Fatal("neighbour slot marked")
	}
}

func TestBitmapConcurrentSingleWinner(t *testing.T) {
	const slots = 1000
	const workers = 8

	b := heap.NewBitmap(0, 0, slots+1)
	wins := make([]atomic.Int32, slots+1)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= slots; i++ {
				if b.TryMark(oop.Ref(i)) {
					wins[i].Add(1)
				}
			}
		}()
	}
	wg.Wait()

	for i := 1; i <= slots; i++ {
		if n := wins[i].Load(); n != 1 {
			t.Fatalf("slot %d had %d TryMark winners, want exactly 1", i, n)
		}
	}
	if b.Count() != slots {
		t.Errorf("Count = %d, want %d", b.Count(), slots)
	}
}
