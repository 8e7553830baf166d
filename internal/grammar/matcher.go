package grammar

import (
	"bytes"

	"github.com/dekarrin/constrain/internal/trie"
)

// atomToItem converts a grammar Atom into the stack representation used
// while expanding a nonterminal: a terminal atom becomes a literal byte
// run, and a nonterminal atom becomes either a further nonterminal to
// expand or, if that nonterminal has already been collapsed to the shared
// terminal trie, a direct reference into it.
func atomToItem(g *Grammar, a Atom) stackItem {
	if a.IsTerminal() {
		return terminalItem(a.TerminalBytes())
	}
	id := a.NonterminalID()
	prod := g.Productions(id)
	if prod.IsTerminalsRoot() {
		return terminalsNodeItem(id, prod.terminalsRoot)
	}
	return ntItem(id)
}

// pushRHS returns s with its top nonterminal replaced by the items of one
// right-hand side, first atom ending up on top.
func pushRHS(g *Grammar, s pStack, rhs RHS) pStack {
	base := s.popped()
	items := make([]stackItem, len(rhs))
	for i, a := range rhs {
		items[len(rhs)-1-i] = atomToItem(g, a)
	}
	return base.pushed(items...)
}

// expandState replaces every stack whose top is a not-yet-collapsed
// nonterminal with one stack per right-hand side alternative, repeating
// until every stack's top is a terminal, a terminal trie node, or the
// stack is empty. Stacks already reduced to an identical key are not
// requeued, which also guards against infinite expansion of a purely
// epsilon-recursive nonterminal.
func expandState(g *Grammar, stacks []pStack) []pStack {
	var out []pStack
	queue := append([]pStack{}, stacks...)
	queued := make(map[string]struct{}, len(queue))
	for _, s := range queue {
		queued[s.key()] = struct{}{}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		top, ok := s.last()
		if !ok {
			out = append(out, s)
			continue
		}
		if top.kind != itemNonterminal {
			out = append(out, s)
			continue
		}

		prod := g.Productions(top.nonterminal)
		if prod.IsTerminalsRoot() {
			next := s.popped().pushed(terminalsNodeItem(top.nonterminal, prod.terminalsRoot))
			if _, dup := queued[next.key()]; !dup {
				queued[next.key()] = struct{}{}
				queue = append(queue, next)
			}
			continue
		}

		for _, rhs := range prod.expressions {
			next := pushRHS(g, s, rhs)
			k := next.key()
			if _, dup := queued[k]; dup {
				continue
			}
			queued[k] = struct{}{}
			queue = append(queue, next)
		}
	}

	return dedupeStacks(out)
}

// canConsume reports whether remaining can be fully consumed starting from
// some stack in stacks, expanding nonterminals and crossing stack-item
// boundaries as needed. memo may be nil to disable memoization (the
// EnableByteCache=false case); otherwise repeated sub-problems arising from
// different candidate tokens sharing a common suffix, or from ambiguous
// stacks sharing a common continuation, are only solved once per call.
func canConsume(g *Grammar, stacks []pStack, remaining []byte, memo *matchMemo) bool {
	if len(remaining) == 0 {
		return true
	}

	var key string
	if memo != nil {
		key = stateKey(stacks) + "\x00" + string(remaining)
		if v, ok := memo.results[key]; ok {
			return v
		}
	}

	result := canConsumeUncached(g, stacks, remaining, memo)

	if memo != nil {
		memo.results[key] = result
	}
	return result
}

func canConsumeUncached(g *Grammar, stacks []pStack, remaining []byte, memo *matchMemo) bool {
	for _, s := range expandState(g, stacks) {
		top, ok := s.last()
		if !ok {
			continue
		}

		switch top.kind {
		case itemTerminal:
			b := top.terminal
			n := len(b)
			if n > len(remaining) {
				n = len(remaining)
			}
			if !bytes.Equal(b[:n], remaining[:n]) {
				continue
			}
			if n == len(remaining) {
				return true
			}
			if n == len(b) {
				if canConsume(g, []pStack{s.popped()}, remaining[n:], memo) {
					return true
				}
			}
		case itemTerminalsNode:
			if walkTerminalsNode(g, s, top.node, remaining, memo) {
				return true
			}
		}
	}

	return false
}

// walkTerminalsNode descends the shared terminal trie from node, consuming
// remaining one byte at a time. Reaching a node marked as a forbidden
// except!(...) completion fails the whole path immediately, pruning it and
// all its descendants, per the trie's own negativeBytesIndex contract. At
// any other node that marks a complete terminal, it also tries stopping
// there: popping the collapsed nonterminal instance off the stack and
// resuming the match against whatever is left of remaining further down
// the stack.
func walkTerminalsNode(g *Grammar, s pStack, node trie.NodeID, remaining []byte, memo *matchMemo) bool {
	view := g.terminals.Get(node)

	if view.NegativeBytesIndex != 0 {
		return false
	}

	if len(remaining) == 0 {
		return true
	}

	if view.HasValue() && (view.CanStop || !view.HasChildren()) {
		if canConsume(g, []pStack{s.popped()}, remaining, memo) {
			return true
		}
	}

	child, ok := g.terminals.Child(node, remaining[0])
	if !ok {
		return false
	}
	return walkTerminalsNode(g, s, child, remaining[1:], memo)
}

// advance collects every resulting stack reachable by fully consuming
// remaining from some stack in stacks, mirroring canConsumeUncached's
// traversal but accumulating results instead of stopping at the first
// success.
func advance(g *Grammar, stacks []pStack, remaining []byte, out *[]pStack) {
	if len(remaining) == 0 {
		*out = append(*out, stacks...)
		return
	}

	for _, s := range expandState(g, stacks) {
		top, ok := s.last()
		if !ok {
			continue
		}

		switch top.kind {
		case itemTerminal:
			b := top.terminal
			n := len(b)
			if n > len(remaining) {
				n = len(remaining)
			}
			if !bytes.Equal(b[:n], remaining[:n]) {
				continue
			}
			if n == len(remaining) {
				rest := b[n:]
				if len(rest) == 0 {
					*out = append(*out, s.popped())
				} else {
					*out = append(*out, s.popped().pushed(terminalItem(rest)))
				}
				continue
			}
			if n == len(b) {
				advance(g, []pStack{s.popped()}, remaining[n:], out)
			}
		case itemTerminalsNode:
			advanceTerminalsNode(g, s.popped(), top.owner, top.node, remaining, out)
		}
	}
}

// advanceTerminalsNode mirrors walkTerminalsNode but accumulates every
// resulting continuation stack instead of stopping at the first match:
// both stopping at a legal value node and continuing to a child may be
// simultaneously valid derivations of an ambiguous grammar. Reaching a node
// marked as a forbidden except!(...) completion fails the whole path, the
// same as in walkTerminalsNode.
func advanceTerminalsNode(g *Grammar, base pStack, owner NonterminalID, node trie.NodeID, remaining []byte, out *[]pStack) {
	view := g.terminals.Get(node)

	if view.NegativeBytesIndex != 0 {
		return
	}

	if len(remaining) == 0 {
		canStopHere := view.HasValue() && (view.CanStop || !view.HasChildren())
		if canStopHere {
			*out = append(*out, base)
		}
		if !canStopHere || view.HasChildren() {
			*out = append(*out, base.pushed(terminalsNodeItem(owner, node)))
		}
		return
	}

	if view.HasValue() && (view.CanStop || !view.HasChildren()) {
		advance(g, []pStack{base}, remaining, out)
	}

	if child, ok := g.terminals.Child(node, remaining[0]); ok {
		advanceTerminalsNode(g, base, owner, child, remaining[1:], out)
	}
}
