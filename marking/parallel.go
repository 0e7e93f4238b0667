package marking

import (
	"sync"

	"github.com/Likeheart7/jdk12u/oop"
)

// Pass owns the shared state of one stop-the-world marking pass and the
// gang of markers that runs it: the overflow stacks, the preserved-header
// stack, the optional deduplication queue and the termination barrier.
// A Pass is single-use; build a new one per collection.
type Pass struct {
	model   Model
	bitmap  Bitmap
	cfg     Config
	shared  *Shared
	term    *Terminator
	markers []*Marker
}

// NewPass prepares a pass with one marker per worker. dedup may be nil to
// disable string deduplication.
func NewPass(model Model, bitmap Bitmap, workers int, dedup *DedupQueue, cfg Config) *Pass {
	if asserts && workers <= 0 {
		panic("gc: pass needs at least one worker")
	}
	cfg = cfg.withDefaults()
	shared := &Shared{Dedup: dedup}
	p := &Pass{
		model:  model,
		bitmap: bitmap,
		cfg:    cfg,
		shared: shared,
		term:   NewTerminator(workers),
	}
	p.markers = make([]*Marker, workers)
	for i := range p.markers {
		p.markers[i] = NewMarker(i, model, bitmap, shared, cfg)
	}
	return p
}

// Marker returns worker i's engine, for callers that drive workers
// themselves.
func (p *Pass) Marker(i int) *Marker {
	return p.markers[i]
}

// Preserved returns the pass's preserved-header stack for the restore
// phase.
func (p *Pass) Preserved() *PreservedStack {
	return &p.shared.Preserved
}

// Run marks the transitive closure of roots and returns the aggregated
// stats. Roots are dealt to the workers round-robin; each worker drains
// its stacks and re-offers to the terminator until the whole gang is idle
// with no shared work left.
func (p *Pass) Run(roots []oop.Ref) Stats {
	var wg sync.WaitGroup
	for i, m := range p.markers {
		i, m := i, m
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := i; r < len(roots); r += len(p.markers) {
				m.MarkRoot(roots[r])
			}
			for {
				m.Drain()
				if p.term.Offer(p.sharedWork) {
					return
				}
			}
		}()
	}
	wg.Wait()

	var total Stats
	for _, m := range p.markers {
		total = total.Plus(m.Stats())
	}
	return total
}

// sharedWork reports whether any worker has published work that an idle
// worker could take.
func (p *Pass) sharedWork() bool {
	return !p.shared.ObjOverflow.Empty() || !p.shared.ArrayOverflow.Empty()
}
