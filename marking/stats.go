package marking

// Stats counts the work performed during a pass, per worker or
// aggregated.
type Stats struct {
	Marked        uint64 // mark races won
	RacesLost     uint64 // TryMark calls that lost to another worker
	Chunks        uint64 // array continuation tasks processed
	Spilled       uint64 // pushes routed to the shared overflow stacks
	Preserved     uint64 // header words copied aside
	DedupEnqueued uint64 // objects queued for string deduplication
}

// Plus returns the element-wise sum of s and o.
func (s Stats) Plus(o Stats) Stats {
	return Stats{
		Marked:        s.Marked + o.Marked,
		RacesLost:     s.RacesLost + o.RacesLost,
		Chunks:        s.Chunks + o.Chunks,
		Spilled:       s.Spilled + o.Spilled,
		Preserved:     s.Preserved + o.Preserved,
		DedupEnqueued: s.DedupEnqueued + o.DedupEnqueued,
	}
}
