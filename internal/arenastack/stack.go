package arenastack

import "fmt"

// Stack is a scratch stack of items backed by a region of a Store's slab. It
// grows up to the capacity it was allocated with and panics if pushed past
// that; callers that need more room should allocate a fresh Stack (with a
// larger capacity) and CopyFrom the old one's contents.
type Stack[E any] struct {
	region []E
	n      int
}

// Len returns the number of items currently on the Stack.
func (s *Stack[E]) Len() int {
	return s.n
}

// Push adds an item to the top of the Stack. It panics if the Stack is
// already at the capacity it was allocated with.
func (s *Stack[E]) Push(item E) {
	if s.n >= cap(s.region) {
		panic(fmt.Sprintf("arenastack: push past allocated capacity %d", cap(s.region)))
	}
	if s.n == len(s.region) {
		s.region = s.region[:s.n+1]
	}
	s.region[s.n] = item
	s.n++
}

// Pop removes and returns the top item of the Stack. It panics if the Stack
// is empty.
func (s *Stack[E]) Pop() E {
	if s.n == 0 {
		panic("arenastack: pop of empty stack")
	}
	s.n--
	return s.region[s.n]
}

// Last returns the top item of the Stack without removing it. It panics if
// the Stack is empty.
func (s *Stack[E]) Last() E {
	if s.n == 0 {
		panic("arenastack: last of empty stack")
	}
	return s.region[s.n-1]
}

// Empty returns whether the Stack has no items.
func (s *Stack[E]) Empty() bool {
	return s.n == 0
}

// Index returns the item at the given position, 0 being the bottom of the
// Stack. It panics if i is out of range.
func (s *Stack[E]) Index(i int) E {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("arenastack: index %d out of range [0,%d)", i, s.n))
	}
	return s.region[i]
}

// CopyFrom replaces the Stack's contents with a copy of items, bottom first.
// It panics if items is longer than the Stack's allocated capacity.
func (s *Stack[E]) CopyFrom(items []E) {
	if len(items) > cap(s.region) {
		panic(fmt.Sprintf("arenastack: CopyFrom %d items exceeds capacity %d", len(items), cap(s.region)))
	}
	s.region = s.region[:len(items)]
	copy(s.region, items)
	s.n = len(items)
}

// Raw returns a slice view, bottom first, of the items currently on the
// Stack. The slice aliases the Store's backing slab and is only valid until
// the next mutation of this Stack or the owning Store's next Clear.
func (s *Stack[E]) Raw() []E {
	return s.region[:s.n]
}
