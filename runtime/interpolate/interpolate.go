// Package interpolate substitutes ${variable} placeholders in message payloads
// and step inputs with values from an execution context.
package interpolate

import (
	"regexp"

	"github.com/viant/toolbox"
)

var placeholder = regexp.MustCompile(`\$\{(\w+)\}`)

// Payload resolves ${var} placeholders in value against context. A string that
// is a single placeholder yields the context value with its original type;
// placeholders embedded in a larger string are stringified. Unmatched
// placeholders are left verbatim. Maps and slices are walked recursively and
// returned as new collections.
func Payload(value interface{}, context map[string]interface{}) interface{} {
	switch actual := value.(type) {
	case string:
		return interpolateString(actual, context)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			result[k] = Payload(v, context)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, v := range actual {
			result[i] = Payload(v, context)
		}
		return result
	default:
		return value
	}
}

func interpolateString(text string, context map[string]interface{}) interface{} {
	match := placeholder.FindStringSubmatch(text)
	if match != nil && match[0] == text {
		if value, ok := context[match[1]]; ok {
			return value
		}
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(token string) string {
		name := token[2 : len(token)-1]
		value, ok := context[name]
		if !ok {
			return token
		}
		return toolbox.AsString(value)
	})
}
