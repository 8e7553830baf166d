package trie

// Iterator produces the finite sequence of terminal byte-strings reachable
// at or under some node, depth-first. Child-map order does not affect
// correctness of anything built on top of Iterator, only the order results
// are produced in. Iterator is backed by an explicit stack of node ids
// still to visit rather than recursion, so Next can produce one terminal at
// a time without walking the whole subtree up front.
type Iterator struct {
	at    func(NodeID) *node
	stack []NodeID
}

// Next returns the next terminal byte-string in the walk, and whether one
// was found. Once it returns false, the Iterator is exhausted.
func (it *Iterator) Next() ([]byte, bool) {
	for len(it.stack) > 0 {
		id := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		n := it.at(id)
		for _, child := range n.children {
			it.stack = append(it.stack, child)
		}

		if n.value != nil {
			return n.value, true
		}
	}
	return nil, false
}

// Iter returns a lazy Iterator over every terminal byte-string reachable at
// or under the node with the given id.
func (t *Trie[K]) Iter(id NodeID) *Iterator {
	return &Iterator{
		at:    func(n NodeID) *node { return t.at(n) },
		stack: []NodeID{id},
	}
}
