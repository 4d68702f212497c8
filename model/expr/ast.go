package expr

import (
	"fmt"
	"strings"
)

// Node is one node of the expression AST.  The set of implementations is
// closed; evaluation cannot reach outside the supplied context map.
type Node interface {
	Eval(context map[string]interface{}) (interface{}, error)
}

// Literal holds a constant value: number, string, bool or nil.
type Literal struct {
	Value interface{}
}

// Eval returns the constant.
func (l *Literal) Eval(map[string]interface{}) (interface{}, error) {
	return l.Value, nil
}

// Path is a dotted context-variable lookup, e.g. user.address.city.
// A missing segment yields nil rather than an error.
type Path struct {
	Parts []string
}

// Eval navigates the context map.
func (p *Path) Eval(context map[string]interface{}) (interface{}, error) {
	var current interface{} = context
	for _, part := range p.Parts {
		holder, ok := current.(map[string]interface{})
		if !ok {
			return nil, nil
		}
		current, ok = holder[part]
		if !ok {
			return nil, nil
		}
	}
	return current, nil
}

// Unary is logical negation.
type Unary struct {
	X Node
}

// Eval negates the truthiness of the operand.
func (u *Unary) Eval(context map[string]interface{}) (interface{}, error) {
	value, err := u.X.Eval(context)
	if err != nil {
		return nil, err
	}
	return !truthy(value), nil
}

// Binary applies a comparison or boolean combinator.
type Binary struct {
	Op   string
	X, Y Node
}

// Eval evaluates both operands and applies the operator.  Boolean combinators
// short-circuit.
func (b *Binary) Eval(context map[string]interface{}) (interface{}, error) {
	left, err := b.X.Eval(context)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case "&&":
		if !truthy(left) {
			return false, nil
		}
		right, err := b.Y.Eval(context)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	case "||":
		if truthy(left) {
			return true, nil
		}
		right, err := b.Y.Eval(context)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}
	right, err := b.Y.Eval(context)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case ">", ">=", "<", "<=":
		cmp, err := compare(left, right)
		if err != nil {
			return nil, err
		}
		switch b.Op {
		case ">":
			return cmp > 0, nil
		case ">=":
			return cmp >= 0, nil
		case "<":
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	}
	return nil, fmt.Errorf("unsupported operator %q", b.Op)
}

func newPath(text string) Node {
	return &Path{Parts: strings.Split(text, ".")}
}
