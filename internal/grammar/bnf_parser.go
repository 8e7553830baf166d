package grammar

// rawAtom is one atom as parsed straight from BNF source, before any
// merging of adjacent terminals or resolution of nonterminal names to ids.
type rawAtom struct {
	isTerminal bool
	// terminalRaw holds the literal's source text (undecoded escapes) when
	// isTerminal is true.
	terminalRaw string
	// nonterminalName holds the referenced name when isTerminal is false.
	// This may be "any!" or an except!(...) source form.
	nonterminalName string
}

type rawRHS []rawAtom

// rawRule is one nonterminal's parsed right-hand sides, in source order.
type rawRule struct {
	name  string
	rhss  []rawRHS
}

// parseBNF parses BNF source text of the form
//
//	<name> ::= rhs | rhs | ... ;
//	<name> ::= rhs ;
//	...
//
// into an ordered list of rawRules, preserving the order nonterminals are
// first defined in the source.
func parseBNF(src string) ([]rawRule, error) {
	lex := newBNFLexer(src)

	var rules []rawRule
	seen := make(map[string]int)

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			break
		}
		if tok.kind != tokNonterminal {
			return nil, &BNFParseError{Pos: tok.pos, Msg: "expected a nonterminal rule name like <name>"}
		}
		name := tok.text

		arrow, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if arrow.kind != tokArrow {
			return nil, &BNFParseError{Pos: arrow.pos, Msg: "expected '::=' after rule name"}
		}

		rhss, err := parseAlternatives(lex)
		if err != nil {
			return nil, err
		}

		if idx, ok := seen[name]; ok {
			rules[idx].rhss = append(rules[idx].rhss, rhss...)
		} else {
			seen[name] = len(rules)
			rules = append(rules, rawRule{name: name, rhss: rhss})
		}
	}

	return rules, nil
}

// parseAlternatives parses the "rhs | rhs | ..." that follows a "::=" up to
// a trailing ';' or the next rule / end of input.
func parseAlternatives(lex *bnfLexer) ([]rawRHS, error) {
	var alts []rawRHS
	var cur rawRHS

	flush := func() {
		alts = append(alts, cur)
		cur = nil
	}

	for {
		beforeTok := *lex
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokEOF:
			flush()
			return alts, nil
		case tokSemi:
			flush()
			return alts, nil
		case tokPipe:
			flush()
			continue
		case tokTerminal:
			cur = append(cur, rawAtom{isTerminal: true, terminalRaw: tok.text})
			continue
		case tokNonterminal:
			// this nonterminal reference might actually be the name of the
			// NEXT rule, if it turns out to be followed by '::='; peek
			// ahead before committing it to the current RHS.
			beforeArrowCheck := *lex
			next, err := lex.Next()
			if err != nil {
				return nil, err
			}
			if next.kind == tokArrow {
				*lex = beforeTok
				flush()
				return alts, nil
			}
			*lex = beforeArrowCheck
			cur = append(cur, rawAtom{nonterminalName: tok.text})
			continue
		default:
			return nil, &BNFParseError{Pos: tok.pos, Msg: "unexpected token in right-hand side"}
		}
	}
}
