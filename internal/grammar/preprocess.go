package grammar

import (
	"bytes"
	"fmt"

	"github.com/dekarrin/constrain/internal/escape"
	"github.com/dekarrin/constrain/internal/trie"
	"github.com/dekarrin/constrain/internal/vocab"
)

// NewGrammar parses BNF source and expands it against vocabulary into a
// fully preprocessed Grammar: nonterminal names are assigned dense ids,
// any! and except!(...) forms are resolved against vocabulary, adjacent
// terminal literals are merged and escape-decoded, and every nonterminal
// whose right-hand sides are all single terminals is collapsed into the
// shared terminal trie.
func NewGrammar(src string, vocabulary *vocab.Vocabulary) (*Grammar, error) {
	rawRules, err := parseBNF(src)
	if err != nil {
		return nil, &GrammarPreprocessError{Cause: err}
	}

	defined := make(map[string]int, len(rawRules))
	for i, r := range rawRules {
		defined[r.name] = i
	}

	order := make([]string, 0, len(rawRules))
	seenOrder := make(map[string]bool, len(rawRules))
	addName := func(name string) {
		if !seenOrder[name] {
			seenOrder[name] = true
			order = append(order, name)
		}
	}
	for _, r := range rawRules {
		addName(r.name)
	}
	for _, r := range rawRules {
		for _, rhs := range r.rhss {
			for _, a := range rhs {
				if !a.isTerminal {
					addName(a.nonterminalName)
				}
			}
		}
	}

	for _, name := range order {
		if _, ok := defined[name]; ok {
			continue
		}
		if name == anyBangName || isExceptForm(name) {
			continue
		}
		return nil, &GrammarPreprocessError{Cause: &BNFParseError{Msg: "reference to undefined nonterminal <" + name + ">"}}
	}

	g := &Grammar{
		names:     order,
		ids:       make(map[string]NonterminalID, len(order)),
		prods:     make([]productions, len(order)),
		terminals: trie.New[NonterminalID](),
		tokenSets: make(map[NonterminalID]map[vocab.ID]struct{}),
	}
	for i, name := range order {
		g.ids[name] = NonterminalID(i)
	}

	// step 1: build Expressions productions for every ordinary nonterminal,
	// merging and escape-decoding adjacent terminal literals.
	for _, r := range rawRules {
		if r.name == anyBangName || isExceptForm(r.name) {
			continue
		}
		id := g.ids[r.name]
		rhss := make([]RHS, 0, len(r.rhss))
		for _, raw := range r.rhss {
			rhs, err := buildRHS(raw, g.ids)
			if err != nil {
				return nil, &GrammarPreprocessError{Cause: err}
			}
			rhss = append(rhss, rhs)
		}
		g.prods[id] = exprProductions(rhss)
	}

	// step 2: expand any!, if referenced.
	if id, ok := g.ids[anyBangName]; ok {
		root := g.terminals.Root(id)
		set := make(map[vocab.ID]struct{}, vocabulary.Len())
		for _, tid := range vocabulary.AllIDs() {
			b, _ := vocabulary.Bytes(tid)
			g.terminals.Add(id, b, false)
			set[tid] = struct{}{}
		}
		g.tokenSets[id] = set
		g.prods[id] = terminalsRootProductions(root)
	}

	// step 3: expand except!('literal') forms.
	for _, name := range order {
		if !isExceptForm(name) {
			continue
		}
		ef, err := parseExceptForm(name)
		if err != nil {
			return nil, &GrammarPreprocessError{Cause: err}
		}
		if !ef.hasLiteral {
			continue
		}
		id := g.ids[name]
		literalBytes, err := escape.Decode(ef.literalRaw)
		if err != nil {
			return nil, &GrammarPreprocessError{Cause: err}
		}
		if err := expandExceptLiteralSet(g, vocabulary, id, [][]byte{literalBytes}); err != nil {
			return nil, err
		}
	}

	// step 4: collapse ordinary nonterminals whose right-hand sides are all
	// single terminals into the shared terminal trie.
	for _, name := range order {
		if name == anyBangName || isExceptForm(name) {
			continue
		}
		id := g.ids[name]
		prod := g.prods[id]
		if prod.kind != kindExpressions || !isAllSingleTerminals(prod.expressions) {
			continue
		}
		root := g.terminals.Root(id)
		for _, rhs := range prod.expressions {
			g.terminals.Add(id, rhs[0].TerminalBytes(), true)
		}
		g.prods[id] = terminalsRootProductions(root)
	}

	// step 5: expand except!([nonterminal]) forms, which requires every
	// other nonterminal they may reference to already be fully resolved.
	for _, name := range order {
		if !isExceptForm(name) {
			continue
		}
		ef, err := parseExceptForm(name)
		if err != nil {
			return nil, &GrammarPreprocessError{Cause: err}
		}
		if !ef.hasTarget {
			continue
		}
		if _, ok := g.ids[ef.targetName]; !ok {
			return nil, &UnknownExceptTarget{Name: ef.targetName}
		}

		restricted, err := NewEngine(g, vocabulary, ef.targetName, EngineOptions{})
		if err != nil {
			return nil, &GrammarPreprocessError{Cause: err}
		}
		legal, err := restricted.NextLegalTokens()
		if err != nil {
			return nil, &GrammarPreprocessError{Cause: err}
		}

		forbidden := make([][]byte, 0, len(legal))
		for tid := range legal {
			b, _ := vocabulary.Bytes(tid)
			forbidden = append(forbidden, b)
		}

		id := g.ids[name]
		if err := expandExceptLiteralSet(g, vocabulary, id, forbidden); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// expandExceptLiteralSet builds id's terminal trie root and token-id set by
// inserting every vocabulary token and excluding any whose bytes equal or
// contain one of the forbidden literals, then marking each forbidden
// literal's own path in the trie.
func expandExceptLiteralSet(g *Grammar, vocabulary *vocab.Vocabulary, id NonterminalID, forbidden [][]byte) error {
	if len(forbidden) == 0 {
		return &EmptyExcept{Source: g.NameOf(id)}
	}

	root := g.terminals.Root(id)
	set := make(map[vocab.ID]struct{}, vocabulary.Len())

	for _, tid := range vocabulary.AllIDs() {
		b, _ := vocabulary.Bytes(tid)
		g.terminals.Add(id, b, false)

		legal := true
		for _, lit := range forbidden {
			if bytes.Equal(b, lit) || bytes.Contains(b, lit) {
				legal = false
				break
			}
		}
		if legal {
			set[tid] = struct{}{}
		}
	}

	for _, lit := range forbidden {
		g.terminals.ExceptLiteral(id, lit)
	}

	g.tokenSets[id] = set
	g.prods[id] = terminalsRootProductions(root)
	return nil
}

// buildRHS converts a parsed right-hand side into atoms, escape-decoding
// and merging adjacent terminal literals into one Atom.
func buildRHS(raw rawRHS, ids map[string]NonterminalID) (RHS, error) {
	var out RHS
	var pending []byte
	havePending := false

	flush := func() {
		if havePending {
			out = append(out, Terminal(pending))
			pending = nil
			havePending = false
		}
	}

	for _, a := range raw {
		if a.isTerminal {
			decoded, err := escape.Decode(a.terminalRaw)
			if err != nil {
				return nil, err
			}
			pending = append(pending, decoded...)
			havePending = true
			continue
		}
		flush()
		id, ok := ids[a.nonterminalName]
		if !ok {
			return nil, fmt.Errorf("undefined nonterminal <%s>", a.nonterminalName)
		}
		out = append(out, Nonterminal(id))
	}
	flush()

	return out, nil
}
