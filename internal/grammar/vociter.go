package grammar

import "github.com/dekarrin/constrain/internal/vocab"

// legalTokenIDs returns the set of vocabulary token ids that are legal
// continuations from stacks. It prefers the precomputed token-id set of an
// any!- or except!(...)-derived nonterminal whenever a stack is sitting
// exactly at that nonterminal's trie root. Otherwise it collects the legal
// first bytes of the frontier and tries only the vocabulary tokens with
// those prefixes against canConsume, scanning every vocabulary token only
// when the legal first bytes cannot be collected.
func legalTokenIDs(g *Grammar, vocabulary *vocab.Vocabulary, stacks []pStack, enableByteCache bool) map[vocab.ID]struct{} {
	result := make(map[vocab.ID]struct{})

	frontier := expandState(g, stacks)

	needsFullScan := false
	for _, s := range frontier {
		top, ok := s.last()
		if !ok {
			continue
		}
		if top.kind == itemTerminalsNode {
			if root, ok := g.terminals.RootIfExists(top.owner); ok && root == top.node {
				if set, ok := g.TokenSet(top.owner); ok {
					for id := range set {
						result[id] = struct{}{}
					}
					continue
				}
			}
		}
		needsFullScan = true
	}

	if !needsFullScan {
		return result
	}

	var memo *matchMemo
	if enableByteCache {
		memo = newMatchMemo()
	}

	if firstBytes, ok := legalFirstBytes(g, stacks); ok {
		for fb := range firstBytes {
			it := vocabulary.IterWithPrefix([]byte{fb})
			for {
				b, id, ok := it.Next()
				if !ok {
					break
				}
				if _, already := result[id]; already {
					continue
				}
				if canConsume(g, stacks, b, memo) {
					result[id] = struct{}{}
				}
			}
		}
		return result
	}

	it := vocabulary.IterAll()
	for {
		b, id, ok := it.Next()
		if !ok {
			break
		}
		if _, already := result[id]; already {
			continue
		}
		if canConsume(g, stacks, b, memo) {
			result[id] = struct{}{}
		}
	}

	return result
}

// legalFirstBytes returns the set of bytes that could legally begin a
// vocabulary token continuing from stacks, per engine §4.5.4: a stack
// sitting on a plain Terminal contributes its own first byte, and a stack
// sitting on a TerminalsNode contributes the node's own outgoing edges plus,
// if the node may also stop there, whatever bytes are legal after popping
// it off and continuing into the rest of the stack. ok is false if some
// TerminalsNode branches into more than 127 children, in which case
// issuing one prefix query per child is no longer cheaper than a single
// full vocabulary scan and the caller should fall back to that instead.
// visited stack keys are deduped so an epsilon-recursive nonterminal
// cannot recurse forever.
func legalFirstBytes(g *Grammar, stacks []pStack) (map[byte]struct{}, bool) {
	const maxChildrenForPrefixQueries = 127

	set := make(map[byte]struct{})
	seen := make(map[string]struct{})

	var visit func(s pStack) bool
	visit = func(s pStack) bool {
		key := s.key()
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		for _, es := range expandState(g, []pStack{s}) {
			top, ok := es.last()
			if !ok {
				continue
			}

			switch top.kind {
			case itemTerminal:
				if len(top.terminal) > 0 {
					set[top.terminal[0]] = struct{}{}
				}
			case itemTerminalsNode:
				if g.terminals.ChildCount(top.node) > maxChildrenForPrefixQueries {
					return false
				}
				for _, b := range g.terminals.Children(top.node) {
					set[b] = struct{}{}
				}

				view := g.terminals.Get(top.node)
				if view.HasValue() && (view.CanStop || !view.HasChildren()) {
					if !visit(es.popped()) {
						return false
					}
				}
			}
		}

		return true
	}

	for _, s := range stacks {
		if !visit(s) {
			return nil, false
		}
	}

	return set, true
}

// anyStackEmpty reports whether at least one stack in an expanded frontier
// has been fully reduced to nothing, meaning generation may legally stop
// here.
func anyStackEmpty(frontier []pStack) bool {
	for _, s := range frontier {
		if len(s) == 0 {
			return true
		}
	}
	return false
}

// allStacksEmpty reports whether every stack in an expanded frontier has
// been fully reduced to nothing.
func allStacksEmpty(frontier []pStack) bool {
	if len(frontier) == 0 {
		return false
	}
	for _, s := range frontier {
		if len(s) != 0 {
			return false
		}
	}
	return true
}
