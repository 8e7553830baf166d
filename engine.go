// Package constrain maintains, as an LLM samples tokens one at a time, the
// set of vocabulary token ids that may legally extend the text generated so
// far under a BNF grammar.
package constrain

import (
	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/vocab"
)

// Vocabulary is an immutable token id <-> bytes mapping. It is safe to
// share a single Vocabulary across many Engines.
type Vocabulary = vocab.Vocabulary

// VocabEntry is one token as read from a vocabulary source.
type VocabEntry = vocab.Entry

// TokenID identifies one entry in a Vocabulary.
type TokenID = vocab.ID

// Grammar is a BNF grammar preprocessed against a specific Vocabulary. It is
// immutable once built and safe to share across many Engines.
type Grammar = grammar.Grammar

// EngineOptions configures an Engine's resource limits and end-of-generation
// semantics.
type EngineOptions = grammar.EngineOptions

// ResultCode classifies the outcome of AcceptToken.
type ResultCode = grammar.ResultCode

// Result is the outcome of a single AcceptToken call.
type Result = grammar.Result

// The possible ResultCode values returned from AcceptToken.
const (
	Continue = grammar.Continue
	End      = grammar.End
	Rejected = grammar.Rejected
	Failed   = grammar.Failed
)

// NewVocabulary builds a Vocabulary from the given entries.
func NewVocabulary(entries []VocabEntry) (*Vocabulary, error) {
	return vocab.New(entries)
}

// LoadVocabularyFile reads a newline-delimited vocabulary file, as produced
// by a tokenizer export, into a Vocabulary.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	return vocab.LoadVocabularyFile(path)
}

// NewGrammar parses BNF source and expands it against vocabulary, ready for
// use as the start point of one or more Engines.
func NewGrammar(bnfSource string, vocabulary *Vocabulary) (*Grammar, error) {
	return grammar.NewGrammar(bnfSource, vocabulary)
}

// Engine tracks legal continuations of a grammar-constrained generation as
// tokens are accepted one at a time.
//
// An Engine is not safe for concurrent use from multiple goroutines.
type Engine struct {
	inner *grammar.ParserEngine
}

// NewEngine constructs an Engine that derives text from startNonterminal,
// a nonterminal name defined in g.
func NewEngine(g *Grammar, vocabulary *Vocabulary, startNonterminal string, opts EngineOptions) (*Engine, error) {
	inner, err := grammar.NewEngine(g, vocabulary, startNonterminal, opts)
	if err != nil {
		return nil, err
	}
	return &Engine{inner: inner}, nil
}

// NextLegalTokens returns the set of vocabulary token ids that may legally
// extend the text generated so far.
func (e *Engine) NextLegalTokens() (map[TokenID]struct{}, error) {
	return e.inner.NextLegalTokens()
}

// AcceptToken advances the engine's state by the bytes of the given
// vocabulary token id. On Rejected or Failed the engine's state is left
// unchanged.
func (e *Engine) AcceptToken(id TokenID) Result {
	return e.inner.AcceptToken(id)
}

// Reset returns the engine to its initial state, as if no tokens had been
// accepted.
func (e *Engine) Reset() {
	e.inner.Reset()
}

// Clone returns a structurally independent copy of e at its current state.
// The returned Engine shares e's Grammar and Vocabulary but has its own
// stack frontier, so the two may be driven by separate, divergent
// sequences of AcceptToken calls -- the cheap way to branch generation
// down more than one candidate continuation from the same point.
func (e *Engine) Clone() *Engine {
	return &Engine{inner: e.inner.Clone()}
}
