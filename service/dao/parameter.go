package dao

// Parameter is one query criterion for List calls against the audit stores:
// Name is a field selector (for example Status or CorrelationID) and Value is
// a single expected value or a set of alternatives.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter builds a criterion; multiple values match any of them.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
