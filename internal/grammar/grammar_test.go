package grammar

import (
	"testing"

	"github.com/dekarrin/constrain/internal/vocab"
	"github.com/stretchr/testify/assert"
)

func dnaVocabulary(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New([]vocab.Entry{
		{ID: 0, Bytes: []byte("A"), Display: "A"},
		{ID: 1, Bytes: []byte("C"), Display: "C"},
		{ID: 2, Bytes: []byte("G"), Display: "G"},
		{ID: 3, Bytes: []byte("T"), Display: "T"},
		{ID: 4, Bytes: []byte("1"), Display: "1"},
		{ID: 8, Bytes: []byte("CAT"), Display: "CAT"},
		{ID: 9, Bytes: []byte("A1"), Display: "A1"},
	})
	if err != nil {
		t.Fatalf("building vocabulary: %v", err)
	}
	return v
}

const dnaGrammar = `<dna> ::= <base><dna> | <base> ; <base> ::= 'A' | 'C' | 'G' | 'T' ;`

func Test_NewGrammar_collapsesPureTerminalNonterminal(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGrammar(dnaGrammar, dnaVocabulary(t))
	if !assert.NoError(err) {
		return
	}

	baseID, ok := g.IDOf("base")
	if !assert.True(ok) {
		return
	}
	assert.True(g.Productions(baseID).IsTerminalsRoot())

	dnaID, ok := g.IDOf("dna")
	if !assert.True(ok) {
		return
	}
	assert.False(g.Productions(dnaID).IsTerminalsRoot())
}

func Test_Engine_initialLegalTokens(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGrammar(dnaGrammar, dnaVocabulary(t))
	if !assert.NoError(err) {
		return
	}

	e, err := NewEngine(g, dnaVocabulary(t), "dna", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	legal, err := e.NextLegalTokens()
	if !assert.NoError(err) {
		return
	}

	_, hasA := legal[0]
	_, hasCAT := legal[8]
	_, hasA1 := legal[9]

	assert.True(hasA, "single-base token A should be legal")
	assert.True(hasCAT, "CAT spans three legal bases and should be legal")
	assert.False(hasA1, "A1 contains a digit, not a legal base")
}

func Test_Engine_AcceptToken_endsThenRejectsBadToken(t *testing.T) {
	assert := assert.New(t)

	v := dnaVocabulary(t)
	g, err := NewGrammar(dnaGrammar, v)
	if !assert.NoError(err) {
		return
	}
	e, err := NewEngine(g, v, "dna", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	res := e.AcceptToken(0) // "A", dna -> base alone is a complete derivation
	assert.Equal(End, res.Code)

	res = e.AcceptToken(4) // "1", not a legal base
	assert.Equal(Rejected, res.Code)
}

func Test_Engine_AcceptToken_endWhenAnyStackEmpty(t *testing.T) {
	assert := assert.New(t)

	v := dnaVocabulary(t)
	g, err := NewGrammar(dnaGrammar, v)
	if !assert.NoError(err) {
		return
	}
	e, err := NewEngine(g, v, "dna", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	res := e.AcceptToken(3) // "T", dna -> base alone is a complete derivation
	assert.Equal(End, res.Code)
}

func Test_Engine_Reset_clearsState(t *testing.T) {
	assert := assert.New(t)

	v := dnaVocabulary(t)
	g, err := NewGrammar(dnaGrammar, v)
	if !assert.NoError(err) {
		return
	}
	e, err := NewEngine(g, v, "dna", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	e.AcceptToken(0)
	e.Reset()

	legal, err := e.NextLegalTokens()
	if !assert.NoError(err) {
		return
	}
	_, hasCAT := legal[8]
	assert.True(hasCAT)
}

func Test_Engine_Clone_isStructurallyIndependent(t *testing.T) {
	assert := assert.New(t)

	v := dnaVocabulary(t)
	g, err := NewGrammar(dnaGrammar, v)
	if !assert.NoError(err) {
		return
	}
	e, err := NewEngine(g, v, "dna", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	e.AcceptToken(0) // "A"
	originalStackLen := len(e.stacks)

	clone := e.Clone()
	if !assert.NotSame(e.cache, clone.cache, "clone must own its own token cache") {
		return
	}
	if !assert.NotSame(e.arena, clone.arena, "clone must own its own scratch arena") {
		return
	}

	// Advancing the clone must not disturb the original's stacks, cache, or
	// arena, and vice versa: they are two independent engines from here on.
	res := clone.AcceptToken(0) // "A" again
	if !assert.Equal(End, res.Code) {
		return
	}

	assert.Equal(originalStackLen, len(e.stacks), "original's stack frontier must be untouched by the clone's AcceptToken")

	// Populate the original's cache, then confirm the clone's own cache
	// entry (from its own, different, state) is unaffected.
	if _, err := e.NextLegalTokens(); !assert.NoError(err) {
		return
	}
	cloneLegal, err := clone.NextLegalTokens()
	if !assert.NoError(err) {
		return
	}
	_, cloneHasCAT := cloneLegal[8]
	assert.True(cloneHasCAT, "clone should independently compute its own legal set")
}

func Test_NewGrammar_exceptLiteral(t *testing.T) {
	assert := assert.New(t)

	v := dnaVocabulary(t)
	src := `<body> ::= <except!('T')> ;`

	g, err := NewGrammar(src, v)
	if !assert.NoError(err) {
		return
	}

	e, err := NewEngine(g, v, "body", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	legal, err := e.NextLegalTokens()
	if !assert.NoError(err) {
		return
	}

	_, hasT := legal[3]
	_, hasA := legal[0]
	assert.False(hasT, "T is the excluded literal")
	assert.True(hasA, "A does not contain the excluded literal")
}

func Test_Engine_AcceptToken_exceptLiteralRejectsMultiByteTokenContainingIt(t *testing.T) {
	assert := assert.New(t)

	v := dnaVocabulary(t)
	src := `<body> ::= <except!('C')> ;`

	g, err := NewGrammar(src, v)
	if !assert.NoError(err) {
		return
	}

	e, err := NewEngine(g, v, "body", EngineOptions{})
	if !assert.NoError(err) {
		return
	}

	// "CAT" (token 8) shares the trie path C -> A -> T with the forbidden
	// literal 'C' at its first byte; walking through that forbidden node
	// must fail the whole token, not just skip stopping there.
	res := e.AcceptToken(8)
	assert.Equal(Rejected, res.Code)

	res = e.AcceptToken(0) // "A" does not contain the excluded literal
	assert.Contains([]ResultCode{Continue, End}, res.Code)
}

func Test_NewEngine_unknownStart(t *testing.T) {
	v := dnaVocabulary(t)
	g, err := NewGrammar(dnaGrammar, v)
	if err != nil {
		t.Fatalf("building grammar: %v", err)
	}

	_, err = NewEngine(g, v, "nope", EngineOptions{})
	assert.Error(t, err)
	var target *ErrUnknownStartNonterminal
	assert.ErrorAs(t, err, &target)
}

func Test_NewGrammar_undefinedNonterminalReference(t *testing.T) {
	v := dnaVocabulary(t)
	_, err := NewGrammar(`<dna> ::= <missing> ;`, v)
	assert.Error(t, err)
}
