package grammar

// NonterminalID is a dense integer index assigned to a nonterminal name
// during preprocessing. Defined rule names get ids first, in definition
// order, followed by the referenced any! and except!(...) names in the order
// they are first referenced, so ids are stable for a given grammar source
// but carry no meaning across different Grammars.
type NonterminalID int32

// builtin nonterminal name forms recognized by the preprocessor. except!(...)
// nonterminals are named by their full source text, e.g.
// `except!('"')` or `except!([body])`.
const (
	anyBangName = "any!"
)
