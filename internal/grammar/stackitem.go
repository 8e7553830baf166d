package grammar

import "github.com/dekarrin/constrain/internal/trie"

type stackItemKind int

const (
	itemNonterminal stackItemKind = iota
	itemTerminal
	itemTerminalsNode
)

// stackItem is one element of a parser Stack: either a nonterminal still to
// be expanded, a literal run of bytes still to be matched against input, or
// a node within the shared terminal trie representing partial progress
// through a collapsed nonterminal.
type stackItem struct {
	kind stackItemKind

	nonterminal NonterminalID

	// terminal holds the remaining unmatched bytes for an itemTerminal.
	// This aliases grammar-owned storage (or a suffix of it); it is never
	// mutated in place, only re-sliced.
	terminal []byte

	node trie.NodeID

	// owner is the nonterminal whose collapsed production this trie node
	// belongs to. It is only meaningful when kind is itemTerminalsNode, and
	// lets the matcher find a nonterminal's precomputed token-id set
	// without a reverse node-to-owner index.
	owner NonterminalID
}

func ntItem(id NonterminalID) stackItem {
	return stackItem{kind: itemNonterminal, nonterminal: id}
}

func terminalItem(bytes []byte) stackItem {
	return stackItem{kind: itemTerminal, terminal: bytes}
}

func terminalsNodeItem(owner NonterminalID, id trie.NodeID) stackItem {
	return stackItem{kind: itemTerminalsNode, node: id, owner: owner}
}
