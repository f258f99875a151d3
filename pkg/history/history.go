// Package history provides a bounded rolling buffer of timestamped
// samples. Every analyzer keeps its raw measurements and detected events
// in one of these; the bound is enforced on every append so no history
// can grow without limit.
package history

// Sample is a timestamped value held in a Rolling buffer.
// Time is in milliseconds, matching frame timestamps.
type Sample[T any] struct {
	Time  float64
	Value T
}

// Rolling is an ordered sequence of timestamped samples bounded by a
// maximum count, a maximum age, or both. Samples are appended at the
// tail and evicted from the head; timestamps must be non-decreasing.
//
// Eviction reuses the backing array with a moving head index, so a
// steady-state update is amortized O(1) rather than a per-frame filter
// scan.
type Rolling[T any] struct {
	buf  []Sample[T]
	head int

	maxCount int     // 0 = unbounded by count
	maxAge   float64 // ms, 0 = unbounded by age
}

// NewRolling creates a buffer bounded by maxCount samples and/or maxAge
// milliseconds. A zero bound disables that limit; at least one bound
// should be set.
func NewRolling[T any](maxCount int, maxAge float64) *Rolling[T] {
	return &Rolling[T]{
		maxCount: maxCount,
		maxAge:   maxAge,
	}
}

// Push appends a sample and evicts anything the bounds no longer cover.
// Samples older than the last timestamp are dropped to preserve the
// monotone-timestamp invariant; a sample at the same timestamp replaces
// the tail, so the buffer holds at most one sample per timestamp.
func (r *Rolling[T]) Push(t float64, v T) {
	if n := r.Len(); n > 0 {
		last := r.buf[r.head+n-1].Time
		if t < last {
			return
		}
		if t == last {
			r.buf[len(r.buf)-1].Value = v
			return
		}
	}
	r.buf = append(r.buf, Sample[T]{Time: t, Value: v})
	r.evict(t)
}

func (r *Rolling[T]) evict(now float64) {
	if r.maxAge > 0 {
		cutoff := now - r.maxAge
		for r.head < len(r.buf) && r.buf[r.head].Time < cutoff {
			r.head++
		}
	}
	if r.maxCount > 0 {
		for len(r.buf)-r.head > r.maxCount {
			r.head++
		}
	}
	// Compact once the dead prefix dominates the backing array.
	if r.head > 64 && r.head*2 > len(r.buf) {
		n := copy(r.buf, r.buf[r.head:])
		r.buf = r.buf[:n]
		r.head = 0
	}
}

// EvictBefore drops all samples with Time < cutoff.
func (r *Rolling[T]) EvictBefore(cutoff float64) {
	for r.head < len(r.buf) && r.buf[r.head].Time < cutoff {
		r.head++
	}
}

// Len returns the number of live samples.
func (r *Rolling[T]) Len() int {
	return len(r.buf) - r.head
}

// At returns the i-th live sample (0 = oldest).
func (r *Rolling[T]) At(i int) Sample[T] {
	return r.buf[r.head+i]
}

// Latest returns the newest sample and whether one exists.
func (r *Rolling[T]) Latest() (Sample[T], bool) {
	if r.Len() == 0 {
		var zero Sample[T]
		return zero, false
	}
	return r.buf[len(r.buf)-1], true
}

// Samples returns the live window as a slice, oldest first. The slice
// aliases the internal buffer and is only valid until the next Push.
func (r *Rolling[T]) Samples() []Sample[T] {
	return r.buf[r.head:]
}

// Clear removes all samples without releasing the bounds.
func (r *Rolling[T]) Clear() {
	r.buf = r.buf[:0]
	r.head = 0
}
