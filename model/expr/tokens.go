package expr

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	identCode
	numberCode
	stringCode
	operatorCode
	openParenCode
	closeParenCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	identToken      = parsly.NewToken(identCode, "Identifier", &identMatcher{})
	numberToken     = parsly.NewToken(numberCode, "Number", &numberMatcher{})
	stringToken     = parsly.NewToken(stringCode, "String", &stringMatcher{})
	operatorToken   = parsly.NewToken(operatorCode, "Operator", &operatorMatcher{})
	openParenToken  = parsly.NewToken(openParenCode, "(", matcher.NewByte('('))
	closeParenToken = parsly.NewToken(closeParenCode, ")", matcher.NewByte(')'))
)

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// identMatcher matches identifiers and dotted paths: user.address.city
type identMatcher struct{}

func (m *identMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '_' || c == '.' {
			matched++
			continue
		}
		break
	}
	return matched
}

// numberMatcher matches integers and decimals with an optional leading minus.
type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	matched := 0
	if input[pos] == '-' {
		if pos+1 >= size || !isDigit(input[pos+1]) {
			return 0
		}
		matched++
	}
	if !isDigit(input[pos+matched]) {
		return 0
	}
	dot := false
	for i := pos + matched; i < size; i++ {
		c := input[i]
		if isDigit(c) {
			matched++
			continue
		}
		if c == '.' && !dot && i+1 < size && isDigit(input[i+1]) {
			dot = true
			matched++
			continue
		}
		break
	}
	return matched
}

// stringMatcher matches single or double quoted literals with backslash
// escapes.
type stringMatcher struct{}

func (m *stringMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	quote := input[pos]
	if quote != '\'' && quote != '"' {
		return 0
	}
	for i := pos + 1; i < size; i++ {
		if input[i] == '\\' {
			i++
			continue
		}
		if input[i] == quote {
			return i - pos + 1
		}
	}
	return 0
}

// operatorMatcher matches comparison and boolean operators, longest first.
type operatorMatcher struct{}

var operators = []string{"==", "!=", ">=", "<=", "&&", "||", ">", "<", "!"}

func (m *operatorMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	for _, op := range operators {
		if pos+len(op) > size {
			continue
		}
		if string(input[pos:pos+len(op)]) == op {
			return len(op)
		}
	}
	return 0
}
