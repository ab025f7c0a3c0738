package testfixtures

import "sync"

// SequenceRandom replays scripted choices. Each IntN returns the next value
// modulo n; once the script runs out it returns 0.
type SequenceRandom struct {
	mu     sync.Mutex
	values []int
	pos    int
	calls  []int
}

// NewSequenceRandom scripts the given choices.
func NewSequenceRandom(values ...int) *SequenceRandom {
	return &SequenceRandom{values: append([]int(nil), values...)}
}

// IntN implements scheduler.RandomSource.
func (r *SequenceRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, n)
	if n <= 0 || r.pos >= len(r.values) {
		return 0
	}
	v := r.values[r.pos] % n
	r.pos++
	if v < 0 {
		v += n
	}
	return v
}

// Calls returns the pool sizes IntN was asked about, in order.
func (r *SequenceRandom) Calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}
