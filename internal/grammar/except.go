package grammar

import (
	"strings"
)

// exceptForm describes a parsed except!(...) nonterminal name.
type exceptForm struct {
	// literalRaw holds the undecoded literal text when this is an
	// except!('literal') form.
	literalRaw string
	hasLiteral bool

	// targetName holds the referenced nonterminal name when this is an
	// except!([nonterminal]) form.
	targetName string
	hasTarget  bool
}

const (
	exceptPrefix = "except!("
	exceptSuffix = ")"
)

// isExceptForm returns whether name has the surface syntax of an
// except!(...) nonterminal reference.
func isExceptForm(name string) bool {
	return strings.HasPrefix(name, exceptPrefix) && strings.HasSuffix(name, exceptSuffix)
}

// parseExceptForm parses the inner contents of an except!(...) name. It
// returns EmptyExcept if the brackets (either quote or bracket form) are
// empty.
func parseExceptForm(name string) (exceptForm, error) {
	inner := strings.TrimSpace(name[len(exceptPrefix) : len(name)-len(exceptSuffix)])

	if inner == "" {
		return exceptForm{}, &EmptyExcept{Source: name}
	}

	if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
		target := strings.TrimSpace(inner[1 : len(inner)-1])
		if target == "" {
			return exceptForm{}, &EmptyExcept{Source: name}
		}
		return exceptForm{targetName: target, hasTarget: true}, nil
	}

	if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
		literal := inner[1 : len(inner)-1]
		if literal == "" {
			return exceptForm{}, &EmptyExcept{Source: name}
		}
		return exceptForm{literalRaw: literal, hasLiteral: true}, nil
	}

	return exceptForm{}, &BNFParseError{Msg: "malformed except!(...) form: " + name}
}
