package criteria

import (
	"github.com/viant/conduit/service/dao"
)

// Matches reports whether every parameter is satisfied by the entity field
// values produced by the supplied lookup. A []string parameter value matches
// when any element equals the field. Unknown parameter names match.
func Matches(parameters []*dao.Parameter, field func(name string) (string, bool)) bool {
	for _, parameter := range parameters {
		actual, known := field(parameter.Name)
		if !known {
			continue
		}
		switch expected := parameter.Value.(type) {
		case string:
			if actual != expected {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range expected {
				if actual == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
