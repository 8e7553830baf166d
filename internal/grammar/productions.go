package grammar

import "github.com/dekarrin/constrain/internal/trie"

type productionKind int

const (
	kindExpressions productionKind = iota
	kindTerminalsRoot
)

// productions is the production set for one nonterminal: either a set of
// expression right-hand sides, or, once collapsed, a reference into the
// shared TerminalsTrie for a nonterminal whose right-hand sides are all
// single terminals.
type productions struct {
	kind          productionKind
	expressions   []RHS
	terminalsRoot trie.NodeID
}

func exprProductions(rhss []RHS) productions {
	return productions{kind: kindExpressions, expressions: rhss}
}

func terminalsRootProductions(root trie.NodeID) productions {
	return productions{kind: kindTerminalsRoot, terminalsRoot: root}
}

// IsTerminalsRoot returns whether this nonterminal has been collapsed to a
// TerminalsTrie reference.
func (p productions) IsTerminalsRoot() bool {
	return p.kind == kindTerminalsRoot
}

// isAllSingleTerminals returns whether every RHS in rhss is exactly one
// terminal atom, making the nonterminal eligible for collapsing to a
// TerminalsRoot.
func isAllSingleTerminals(rhss []RHS) bool {
	for _, rhs := range rhss {
		if len(rhs) != 1 || !rhs[0].IsTerminal() {
			return false
		}
	}
	return true
}
