package expr

import (
	"fmt"

	"github.com/viant/toolbox"
)

// Evaluate parses and evaluates the expression against the supplied context,
// coercing the result to a boolean.
func Evaluate(expression string, context map[string]interface{}) (bool, error) {
	node, err := Parse(expression)
	if err != nil {
		return false, err
	}
	value, err := node.Eval(context)
	if err != nil {
		return false, err
	}
	return truthy(value), nil
}

func truthy(value interface{}) bool {
	switch actual := value.(type) {
	case nil:
		return false
	case bool:
		return actual
	case string:
		return actual != ""
	}
	if isNumber(value) {
		return toolbox.AsFloat(value) != 0
	}
	return true
}

func isNumber(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func equal(left, right interface{}) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if isNumber(left) && isNumber(right) {
		return toolbox.AsFloat(left) == toolbox.AsFloat(right)
	}
	if lb, ok := left.(bool); ok {
		if rb, ok := right.(bool); ok {
			return lb == rb
		}
		return false
	}
	return toolbox.AsString(left) == toolbox.AsString(right)
}

func compare(left, right interface{}) (int, error) {
	if isNumber(left) && isNumber(right) {
		l, r := toolbox.AsFloat(left), toolbox.AsFloat(right)
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		}
		return 0, nil
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch {
		case ls < rs:
			return -1, nil
		case ls > rs:
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot order %T and %T", left, right)
}
