package tree

// Allocator hands out item ids for one top-level tree instance. Keeping the
// counter per root, rather than process-wide, means trees built in parallel
// tests cannot interfere with each other.
type Allocator struct {
	next int64
}

// NewAllocator returns an allocator whose first id is 1; 0 is reserved for
// the root sentinel.
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Next returns a fresh id, monotonically increasing.
func (a *Allocator) Next() int64 {
	id := a.next
	a.next++
	return id
}

// Claim advances the counter past an externally supplied id so later calls
// to Next never collide with it.
func (a *Allocator) Claim(id int64) {
	if id >= a.next {
		a.next = id + 1
	}
}

// ResetForTesting rewinds the counter to its initial value.
func (a *Allocator) ResetForTesting() {
	a.next = 1
}
