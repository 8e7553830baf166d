// Package grammar preprocesses a BNF grammar against a vocabulary and
// drives the resulting non-deterministic pushdown automaton over it.
//
// Grammar preprocessing and engine evaluation live in one package rather
// than two because except!([nonterminal]) expansion needs to run a
// throwaway engine over the grammar-in-progress to find what a nonterminal
// accepts in one step; splitting them would make the two halves depend on
// each other.
package grammar
