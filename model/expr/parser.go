package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

type token struct {
	code int
	text string
}

// lex tokenizes the expression; any unrecognised input is an error.
func lex(expression string) ([]token, error) {
	cursor := parsly.NewCursor("", []byte(expression), 0)
	var tokens []token
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAfterOptional(whitespaceToken,
			operatorToken, numberToken, stringToken, identToken, openParenToken, closeParenToken)
		switch matched.Code {
		case operatorCode, numberCode, stringCode, identCode, openParenCode, closeParenCode:
			tokens = append(tokens, token{code: matched.Code, text: matched.Text(cursor)})
		case parsly.EOF:
			return tokens, nil
		default:
			return nil, fmt.Errorf("unexpected input at position %d: %q", cursor.Pos, expression[cursor.Pos:])
		}
	}
	return tokens, nil
}

// parser is a recursive-descent parser over the token stream.
type parser struct {
	tokens []token
	pos    int
}

// Parse builds the AST for the supplied expression.
func Parse(expression string) (Node, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("empty expression")
	}
	tokens, err := lex(expression)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected token %q", p.tokens[p.pos].text)
	}
	return node, nil
}

func (p *parser) peek() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) acceptOperator(ops ...string) string {
	next := p.peek()
	if next == nil || next.code != operatorCode {
		return ""
	}
	for _, op := range ops {
		if next.text == op {
			p.pos++
			return op
		}
	}
	return ""
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptOperator("||") != "" {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "||", X: left, Y: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.acceptOperator("&&") != "" {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "&&", X: left, Y: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.acceptOperator("!") != "" {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{X: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if op := p.acceptOperator("==", "!=", ">=", "<=", ">", "<"); op != "" {
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, X: left, Y: right}, nil
	}
	return left, nil
}

func (p *parser) parseOperand() (Node, error) {
	next := p.peek()
	if next == nil {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	switch next.code {
	case openParenCode:
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.peek()
		if closing == nil || closing.code != closeParenCode {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return node, nil
	case numberCode:
		p.pos++
		value, err := strconv.ParseFloat(next.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", next.text, err)
		}
		return &Literal{Value: value}, nil
	case stringCode:
		p.pos++
		return &Literal{Value: unquote(next.text)}, nil
	case identCode:
		p.pos++
		switch next.text {
		case "true":
			return &Literal{Value: true}, nil
		case "false":
			return &Literal{Value: false}, nil
		case "null", "nil":
			return &Literal{Value: nil}, nil
		}
		return newPath(next.text), nil
	}
	return nil, fmt.Errorf("unexpected token %q", next.text)
}

func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	quote := text[0]
	body := text[1 : len(text)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == quote) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
