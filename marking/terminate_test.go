package marking

import (
	"sync"
	"testing"

	"github.com/Likeheart7/jdk12u/oop"
)

func TestTerminatorAllIdle(t *testing.T) {
	const workers = 4
	term := NewTerminator(workers)
	noWork := func() bool { return false }

	var wg sync.WaitGroup
	results := make([]bool, workers)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = term.Offer(noWork)
		}()
	}
	wg.Wait()

	for i, done := range results {
		if !done {
			t.Errorf("worker %d did not observe termination", i)
		}
	}
}

func TestTerminatorResumesOnSharedWork(t *testing.T) {
	const workers = 3
	term := NewTerminator(workers)

	var overflow OverflowStack[oop.Ref]
	overflow.Push(oop.Ref(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	resumed := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if term.Offer(func() bool { return !overflow.Empty() }) {
					return
				}
				// Shared work appeared: consume it and offer again.
				if _, ok := overflow.Pop(); ok {
					mu.Lock()
					resumed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if resumed != 1 {
		t.Errorf("%d workers consumed the shared entry, want exactly 1", resumed)
	}
	if !overflow.Empty() {
		t.Error("terminated with shared work outstanding")
	}
}

func TestTerminatorReset(t *testing.T) {
	term := NewTerminator(1)
	if !term.Offer(func() bool { return false }) {
		t.Fatal("single worker did not terminate")
	}
	term.Reset()
	if !term.Offer(func() bool { return false }) {
		t.Fatal("terminator not reusable after Reset")
	}
}
