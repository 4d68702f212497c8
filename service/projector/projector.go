// Package projector shapes service response payloads down to requested field
// sets: dot-notation paths, single-level wildcards and named presets.
package projector

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/viant/conduit/service/directory"
)

// Projection selects response fields either through a named preset or an
// explicit field list; Preset wins when both are set.
type Projection struct {
	Preset string   `json:"preset,omitempty" yaml:"preset,omitempty"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Error reports requested fields outside a service's declared response shape.
type Error struct {
	Service string
	Fields  []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid projection fields for service %q: %s", e.Service, strings.Join(e.Fields, ", "))
}

// Service resolves, validates and applies projections.
type Service struct{}

// New creates a projector.
func New() *Service {
	return &Service{}
}

// Resolve picks the effective field list: the explicit projection wins over
// the client default; nil means the response passes through unshaped.
func (s *Service) Resolve(explicit, clientDefault *Projection, entry *directory.Entry) ([]string, error) {
	for _, projection := range []*Projection{explicit, clientDefault} {
		if projection == nil {
			continue
		}
		if projection.Preset != "" {
			fields, ok := entry.Preset(projection.Preset)
			if !ok {
				return nil, fmt.Errorf("service %q has no projection preset %q", entry.Name, projection.Preset)
			}
			return fields, nil
		}
		if len(projection.Fields) > 0 {
			return projection.Fields, nil
		}
	}
	return nil, nil
}

// Validate checks the requested fields against the service's declared
// response shape. Entries without a declared shape accept any field.
func (s *Service) Validate(fields []string, entry *directory.Entry) error {
	declared := declaredPaths(entry)
	if len(declared) == 0 {
		return nil
	}
	var invalid []string
	for _, field := range fields {
		path := strings.TrimSuffix(field, ".*")
		if path == "" || path == "*" {
			continue
		}
		if !pathDeclared(path, declared) {
			invalid = append(invalid, field)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &Error{Service: entry.Name, Fields: invalid}
	}
	return nil
}

// Apply shapes data down to the requested fields. Missing fields are silently
// omitted, arrays are projected element-wise and an empty field list passes
// the data through. Applying the same projection twice yields the same value.
func (s *Service) Apply(data interface{}, fields []string) (interface{}, error) {
	if data == nil || len(fields) == 0 {
		return data, nil
	}
	for _, field := range fields {
		if field == "*" {
			return data, nil
		}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for projection: %w", err)
	}
	parsed := gjson.ParseBytes(encoded)
	if parsed.IsArray() {
		elements := parsed.Array()
		out := make([]interface{}, 0, len(elements))
		for _, element := range elements {
			out = append(out, project(element, fields))
		}
		return out, nil
	}
	if !parsed.IsObject() {
		return data, nil
	}
	return project(parsed, fields), nil
}

func project(value gjson.Result, fields []string) map[string]interface{} {
	out := map[string]interface{}{}
	for _, field := range fields {
		if strings.HasSuffix(field, ".*") {
			prefix := strings.TrimSuffix(field, ".*")
			child := value.Get(prefix)
			if child.Exists() && child.IsObject() {
				setNested(out, strings.Split(prefix, "."), child.Value())
			}
			continue
		}
		result := value.Get(field)
		if !result.Exists() {
			continue
		}
		setNested(out, strings.Split(field, "."), result.Value())
	}
	return out
}

func setNested(out map[string]interface{}, parts []string, value interface{}) {
	current := out
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return
		}
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[part] = next
		}
		current = next
	}
}

// declaredPaths flattens the entry's declared response shape into a path set;
// the Go contract type wins over the schema map.
func declaredPaths(entry *directory.Entry) map[string]bool {
	paths := map[string]bool{}
	if entry.ResponseType != nil && entry.ResponseType.Type != nil {
		collectTypePaths(entry.ResponseType.Type, "", paths, 0)
		return paths
	}
	collectSchemaPaths(entry.ResponseSchema, "", paths)
	return paths
}

func collectSchemaPaths(schema map[string]interface{}, prefix string, paths map[string]bool) {
	for key, value := range schema {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		paths[path] = true
		if child, ok := value.(map[string]interface{}); ok {
			collectSchemaPaths(child, path, paths)
		}
	}
}

func collectTypePaths(rType reflect.Type, prefix string, paths map[string]bool, depth int) {
	if depth > 8 {
		return
	}
	for rType.Kind() == reflect.Ptr || rType.Kind() == reflect.Slice {
		rType = rType.Elem()
	}
	if rType.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rType.NumField(); i++ {
		field := rType.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(field)
		if name == "" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		paths[path] = true
		collectTypePaths(field.Type, path, paths, depth+1)
	}
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if tag != "" {
		if idx := strings.Index(tag, ","); idx != -1 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag
		}
	}
	return field.Name
}

// pathDeclared accepts exact matches and ancestors of declared paths.
func pathDeclared(path string, declared map[string]bool) bool {
	if declared[path] {
		return true
	}
	prefix := path + "."
	for candidate := range declared {
		if strings.HasPrefix(candidate, prefix) {
			return true
		}
	}
	return false
}
