// Package arenastack provides a fixed-capacity slab from which short-lived
// stacks are carved out and released en masse.
//
// A Store[E] pre-allocates a single backing array of capacity N and doles out
// Stack[E] views into contiguous regions of it as callers ask for new
// scratch stacks. Nothing is freed item-by-item; calling Clear rewinds the
// watermark and every Stack handed out before that point becomes invalid to
// use. This matches the lifecycle of the parser engine's working stacks,
// which live only for the duration of one accept/next-legal-tokens call and
// are discarded together at the end of it.
package arenastack

import "errors"

// ErrStackArenaExhausted is returned by Allocate when the store has no room
// left for the requested capacity.
var ErrStackArenaExhausted = errors.New("stack arena exhausted")

// Store is a single-owner, not-thread-safe slab allocator for Stack[E]
// values. It is meant to be reset between calls rather than shared across
// goroutines.
type Store[E any] struct {
	slab      []E
	watermark int
}

// New returns a Store with the given total capacity across all stacks it
// will ever hand out before the next Clear.
func New[E any](capacity int) *Store[E] {
	return &Store[E]{
		slab: make([]E, capacity),
	}
}

// Cap returns the total capacity of the arena.
func (s *Store[E]) Cap() int {
	return len(s.slab)
}

// Len returns how much of the arena's capacity is currently in use.
func (s *Store[E]) Len() int {
	return s.watermark
}

// Allocate carves out a new, empty Stack[E] able to hold up to capacity
// items without the Store needing to grow it further. It returns
// ErrStackArenaExhausted if the arena does not have capacity items left
// before the next Clear.
func (s *Store[E]) Allocate(capacity int) (*Stack[E], error) {
	if s.watermark+capacity > len(s.slab) {
		return nil, ErrStackArenaExhausted
	}

	region := s.slab[s.watermark : s.watermark+capacity : s.watermark+capacity]
	s.watermark += capacity

	return &Stack[E]{region: region}, nil
}

// Clear rewinds the arena's watermark so its entire capacity is available
// again. Every Stack[E] allocated before the call to Clear must not be used
// afterward; its backing region may be overwritten by later allocations.
func (s *Store[E]) Clear() {
	s.watermark = 0
}
