package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parseBNF_basicRules(t *testing.T) {
	assert := assert.New(t)

	src := `<dna> ::= <base><dna> | <base> ; <base>::='A'|'C'|'G'|'T' ;`

	rules, err := parseBNF(src)
	if !assert.NoError(err) {
		return
	}

	if !assert.Len(rules, 2) {
		return
	}
	assert.Equal("dna", rules[0].name)
	assert.Len(rules[0].rhss, 2)
	assert.Equal("base", rules[1].name)
	assert.Len(rules[1].rhss, 4)
}

func Test_parseBNF_noTrailingSemicolonBeforeEOF(t *testing.T) {
	assert := assert.New(t)

	src := `<digit> ::= '1' | '2'`

	rules, err := parseBNF(src)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(rules, 1) {
		return
	}
	assert.Equal("digit", rules[0].name)
	assert.Len(rules[0].rhss, 2)
}

func Test_parseBNF_mergesRepeatedRuleDefinitions(t *testing.T) {
	assert := assert.New(t)

	src := `<x> ::= 'a' ; <y> ::= 'b' ; <x> ::= 'c' ;`

	rules, err := parseBNF(src)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(rules, 2) {
		return
	}
	assert.Equal("x", rules[0].name)
	assert.Len(rules[0].rhss, 2)
}

func Test_parseBNF_exceptLiteralForm(t *testing.T) {
	assert := assert.New(t)

	src := `<body> ::= <except!('"')> ;`

	rules, err := parseBNF(src)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(rules, 1) {
		return
	}
	if !assert.Len(rules[0].rhss[0], 1) {
		return
	}
	assert.Equal(`except!('"')`, rules[0].rhss[0][0].nonterminalName)
}

func Test_parseBNF_exceptTargetForm(t *testing.T) {
	assert := assert.New(t)

	src := `<other> ::= <except!([body])> ;`

	rules, err := parseBNF(src)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(rules, 1) {
		return
	}
	assert.Equal(`except!([body])`, rules[0].rhss[0][0].nonterminalName)
}

func Test_parseBNF_unterminatedNonterminal(t *testing.T) {
	_, err := parseBNF(`<dna ::= 'A' ;`)
	assert.Error(t, err)
}

func Test_parseBNF_missingArrow(t *testing.T) {
	_, err := parseBNF(`<dna> 'A' ;`)
	assert.Error(t, err)
}
