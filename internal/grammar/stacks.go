package grammar

import (
	"encoding/binary"
	"sort"
	"strings"
)

// pStack is one parser stack, bottom item first. Every stack, persistent or
// scratch, lives in an ordinary Go slice owned by the garbage collector; the
// engine's arena only accounts for the size of an expanded frontier and
// does not hold stack items.
type pStack []stackItem

func writeVarint(sb *strings.Builder, v int64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutVarint(buf[:], v)
	sb.Write(buf[:n])
}

// key returns a canonical string encoding of the stack, suitable for use as
// a deduplication or cache key. Terminal bytes are length-prefixed so that
// arbitrary byte content, including the encoding's own tag bytes, can never
// be misread as a boundary.
func (s pStack) key() string {
	var sb strings.Builder
	for _, it := range s {
		switch it.kind {
		case itemNonterminal:
			sb.WriteByte('N')
			writeVarint(&sb, int64(it.nonterminal))
		case itemTerminal:
			sb.WriteByte('T')
			writeVarint(&sb, int64(len(it.terminal)))
			sb.Write(it.terminal)
		case itemTerminalsNode:
			sb.WriteByte('G')
			writeVarint(&sb, int64(it.node))
		}
	}
	return sb.String()
}

// last returns the top item of the stack and whether the stack is
// non-empty.
func (s pStack) last() (stackItem, bool) {
	if len(s) == 0 {
		return stackItem{}, false
	}
	return s[len(s)-1], true
}

// popped returns the stack with its top item removed. The result shares
// its backing array with s.
func (s pStack) popped() pStack {
	return s[:len(s)-1]
}

// pushed returns a copy of the stack with items appended in the given
// order, so the last of items ends up on top.
func (s pStack) pushed(items ...stackItem) pStack {
	out := make(pStack, 0, len(s)+len(items))
	out = append(out, s...)
	out = append(out, items...)
	return out
}

// dedupeStacks removes duplicate stacks from a candidate list, preserving
// the order of first occurrence. Two stacks are duplicates if their key()
// values match -- equal as ordered sequences of the same kind of item with
// the same content.
func dedupeStacks(stacks []pStack) []pStack {
	seen := make(map[string]struct{}, len(stacks))
	out := make([]pStack, 0, len(stacks))
	for _, s := range stacks {
		k := s.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// stateKey returns a canonical key for an unordered set of stacks, suitable
// for use in the persistent stacks-to-legal-token-ids cache. The set is
// canonicalized by sorting the per-stack keys, so two states holding the
// same stacks in different orders produce the same key.
func stateKey(stacks []pStack) string {
	keys := make([]string, len(stacks))
	for i, s := range stacks {
		keys[i] = s.key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x00")
}
