package uniform

// Stats counts cache activity. Recomputes is indexed by Entry and Invalidations by Field.
type Stats struct {
	Recomputes    [EntryCount]uint64
	Invalidations [FieldCount]uint64
}

// counter returns the recomputation counter of e.
func (s *Stats) counter(e Entry) *uint64 {
	return &s.Recomputes[e]
}

// RecomputeCount returns how many times e has been recomputed.
//
// Parameters:
//   - e: the derived entry
//
// Returns:
//   - uint64: the number of recomputations
func (s Stats) RecomputeCount(e Entry) uint64 {
	if e >= EntryCount {
		return 0
	}
	return s.Recomputes[e]
}

// TotalRecomputes returns the sum of all recomputation counters.
func (s Stats) TotalRecomputes() uint64 {
	var total uint64
	for _, n := range s.Recomputes {
		total += n
	}
	return total
}

// TotalInvalidations returns the number of setter calls that reached the invalidation step.
func (s Stats) TotalInvalidations() uint64 {
	var total uint64
	for _, n := range s.Invalidations {
		total += n
	}
	return total
}

// Add returns the element-wise sum of s and other.
func (s Stats) Add(other Stats) Stats {
	for i := range s.Recomputes {
		s.Recomputes[i] += other.Recomputes[i]
	}
	for i := range s.Invalidations {
		s.Invalidations[i] += other.Invalidations[i]
	}
	return s
}
