// Package ids provides the identifier allocators for chid, coid, and
// rcvid described in spec.md §3: chid/coid are monotonic per process,
// rcvid is monotonic and globally unique across the whole registry.
package ids

import "sync/atomic"

// Allocator is a monotonically increasing positive-integer generator.
// Zero is never returned, matching the requirement that 0 is reserved
// (for pulses, in the rcvid case) and negative values are never valid.
type Allocator struct {
	next int64
}

// Next returns the next id, starting from 1.
func (a *Allocator) Next() int32 {
	return int32(atomic.AddInt64(&a.next, 1))
}

// RcvidAllocator is registry-wide: each Driver owns one and every process
// in it draws from it, so rcvid stays unique across that registry
// regardless of how many processes are sending.
type RcvidAllocator struct {
	next int64
}

// Next returns the next rcvid, starting from 1. 0 is never produced by
// this allocator; callers reserve 0 for pulses explicitly.
func (a *RcvidAllocator) Next() int64 {
	return atomic.AddInt64(&a.next, 1)
}
