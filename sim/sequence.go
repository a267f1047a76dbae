package sim

// Sequence hands out increasing identifiers starting at 1.
// Each owner (scheduler, resource, restaurant, driver) keeps its own Sequence,
// so independent simulation runs never share counters.
//
// Thread-safety: NOT thread-safe, like the rest of the kernel.
type Sequence struct {
	last uint64
}

// Next returns the next identifier.
func (s *Sequence) Next() uint64 {
	s.last++
	return s.last
}

// Peek returns the identifier most recently handed out (0 if none).
func (s *Sequence) Peek() uint64 {
	return s.last
}
