package grammar

import "github.com/dekarrin/constrain/internal/vocab"

// tokenCache memoizes the legal-token-id set for a given parser state
// across calls to NextLegalTokens, keyed on the state's canonical stack set.
// It survives AcceptToken (which produces a new state with its own key) and
// is only cleared by Reset, since grammar and vocabulary never change
// within an engine's lifetime.
type tokenCache struct {
	byState map[string]map[vocab.ID]struct{}
}

func newTokenCache() *tokenCache {
	return &tokenCache{byState: make(map[string]map[vocab.ID]struct{})}
}

func (c *tokenCache) get(stacks []pStack) (map[vocab.ID]struct{}, bool) {
	set, ok := c.byState[stateKey(stacks)]
	return set, ok
}

func (c *tokenCache) put(stacks []pStack, set map[vocab.ID]struct{}) {
	c.byState[stateKey(stacks)] = set
}

func (c *tokenCache) clear() {
	c.byState = make(map[string]map[vocab.ID]struct{})
}

// clone returns a structurally independent copy of c, for ParserEngine.Clone.
func (c *tokenCache) clone() *tokenCache {
	out := newTokenCache()
	for k, set := range c.byState {
		setCopy := make(map[vocab.ID]struct{}, len(set))
		for id := range set {
			setCopy[id] = struct{}{}
		}
		out.byState[k] = setCopy
	}
	return out
}

// matchMemo memoizes, within a single engine call, whether a given set of
// stacks can consume a given remaining byte suffix. It is discarded at the
// end of the call; matches made against one candidate token's bytes have no
// bearing on another, but sub-problems shared between candidates or between
// ambiguous stacks within the same call are solved only once.
type matchMemo struct {
	results map[string]bool
}

func newMatchMemo() *matchMemo {
	return &matchMemo{results: make(map[string]bool)}
}
