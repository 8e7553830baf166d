package grammar

import (
	"github.com/dekarrin/constrain/internal/trie"
	"github.com/dekarrin/constrain/internal/vocab"
)

// Grammar is a fully preprocessed grammar: nonterminal names have been
// assigned dense ids, any! and except!(...) forms have been expanded against
// a specific Vocabulary, adjacent terminal literals have been merged, and
// every nonterminal whose right-hand sides are all single terminals has been
// collapsed to a reference into the shared terminal trie.
//
// A Grammar is immutable once built and safe to share across many
// ParserEngines, including concurrently from different goroutines, as long
// as none of them mutate it -- nothing in this package does.
type Grammar struct {
	names []string
	ids   map[string]NonterminalID
	prods []productions

	terminals *trie.Trie[NonterminalID]

	// tokenSets holds the precomputed nonterminal-to-token-id sets for
	// nonterminals built from any! or except!(...) expansion. Ordinary
	// collapsed nonterminals are not present here: their trie leaves are
	// copies of grammar literals, not vocabulary entries, so there is no
	// fixed id set to precompute for them.
	tokenSets map[NonterminalID]map[vocab.ID]struct{}
}

// NonterminalCount returns the number of nonterminals in the grammar.
func (g *Grammar) NonterminalCount() int {
	return len(g.names)
}

// NameOf returns the source name of a nonterminal id.
func (g *Grammar) NameOf(id NonterminalID) string {
	return g.names[id]
}

// IDOf returns the id assigned to a nonterminal name, if that name is
// defined in this grammar.
func (g *Grammar) IDOf(name string) (NonterminalID, bool) {
	id, ok := g.ids[name]
	return id, ok
}

// Productions returns the production set for a nonterminal id.
func (g *Grammar) Productions(id NonterminalID) productions {
	return g.prods[id]
}

// Terminals returns the shared terminal trie backing every collapsed
// nonterminal in the grammar.
func (g *Grammar) Terminals() *trie.Trie[NonterminalID] {
	return g.terminals
}

// TokenSet returns the precomputed set of vocabulary token ids legal for a
// TerminalsNode rooted at an any!- or except!(...)-derived nonterminal, and
// whether one was precomputed for id.
func (g *Grammar) TokenSet(id NonterminalID) (map[vocab.ID]struct{}, bool) {
	set, ok := g.tokenSets[id]
	return set, ok
}
