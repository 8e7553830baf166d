package grammar

import "fmt"

// BNFParseError reports malformed BNF source text.
type BNFParseError struct {
	Pos int
	Msg string
}

func (e *BNFParseError) Error() string {
	return fmt.Sprintf("bnf parse error at offset %d: %s", e.Pos, e.Msg)
}

// UnknownExceptTarget is returned when except!([X]) names a nonterminal X
// that is not defined anywhere in the grammar.
type UnknownExceptTarget struct {
	Name string
}

func (e *UnknownExceptTarget) Error() string {
	return fmt.Sprintf("except!([%s]): %q is not a defined nonterminal", e.Name, e.Name)
}

// EmptyExcept is returned when an except!() form has empty brackets.
type EmptyExcept struct {
	Source string
}

func (e *EmptyExcept) Error() string {
	return fmt.Sprintf("empty except!() brackets in %q", e.Source)
}

// GrammarPreprocessError wraps any failure met while building a Grammar
// from BNF source: a parse error, a reference to an undefined nonterminal,
// a malformed or empty except!(...) form, a bad escape sequence, or an
// error from the engine used to compute an except!([...]) token set.
type GrammarPreprocessError struct {
	Cause error
}

func (e *GrammarPreprocessError) Error() string {
	return fmt.Sprintf("grammar preprocessing failed: %s", e.Cause.Error())
}

func (e *GrammarPreprocessError) Unwrap() error {
	return e.Cause
}

// ErrUnknownStartNonterminal is returned by NewEngine when the requested
// start nonterminal name is not defined in the grammar.
type ErrUnknownStartNonterminal struct {
	Name string
}

func (e *ErrUnknownStartNonterminal) Error() string {
	return fmt.Sprintf("unknown start nonterminal %q", e.Name)
}
