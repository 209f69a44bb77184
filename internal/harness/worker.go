package harness

import "golang.org/x/sys/cpu"

// paddedCounter is a single worker's running tally, padded to its own
// cache line. Per-worker counters are written far more often than they're
// read (every decided machine bumps one), so without padding, adjacent
// counters in a []paddedCounter would false-share a cache line across
// cores the way adjacent SIMD feature flags would if packed tightly; here
// that's cpu.CacheLinePad reused from the teacher's feature-dispatch role
// to a concurrent-layout one.
type paddedCounter struct {
	n uint64
	_ cpu.CacheLinePad
}

// Stats accumulates per-worker counts of decided machines and, among
// those, how many were proven non-halting, one cache-line-padded slot per
// worker so concurrent increments never contend.
type Stats struct {
	decided []paddedCounter
	proven  []paddedCounter
}

// NewStats allocates a Stats for a harness run using up to cores workers.
func NewStats(cores int) *Stats {
	if cores < 1 {
		cores = 1
	}
	return &Stats{
		decided: make([]paddedCounter, cores),
		proven:  make([]paddedCounter, cores),
	}
}

// Record bumps worker w's counters: one decided machine, and one proven
// machine if ok is true. w must be in [0, cores).
func (s *Stats) Record(w int, ok bool) {
	s.decided[w].n++
	if ok {
		s.proven[w].n++
	}
}

// Totals sums every worker's slot into a single (decided, proven) pair.
func (s *Stats) Totals() (decided, proven uint64) {
	for i := range s.decided {
		decided += s.decided[i].n
		proven += s.proven[i].n
	}
	return decided, proven
}
