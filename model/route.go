package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Route is a declarative rule mapping a message-type pattern and optional
// conditions to one or more destinations.  Routes are matched most-specific
// first by Priority descending; a message may match several active routes and
// is dispatched to all of them independently.
type Route struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`

	// Destinations receive a copy of the message each, in declaration order.
	Destinations []string `json:"destinations" yaml:"destinations"`

	// Transformations name registered message transforms applied in order
	// before fan-out.
	Transformations []string `json:"transformations,omitempty" yaml:"transformations,omitempty"`

	// Conditions narrow the match: "header.<key>" entries compare against the
	// message headers, "source" compares against the message source.  All
	// entries must hold.
	Conditions map[string]interface{} `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	IsActive bool `json:"isActive" yaml:"isActive"`
	Priority int  `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Validate verifies static route properties.
func (r *Route) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("route name is required")
	}
	if r.Pattern == "" {
		return fmt.Errorf("route %s: pattern is required", r.Name)
	}
	if len(r.Destinations) == 0 {
		return fmt.Errorf("route %s: at least one destination is required", r.Name)
	}
	if _, err := r.CompilePattern(); err != nil {
		return fmt.Errorf("route %s: %w", r.Name, err)
	}
	return nil
}

// CompilePattern converts the glob-style pattern ('*' matches any run of
// characters) into an anchored regular expression matched against the full
// messageType.
func (r *Route) CompilePattern() (*regexp.Regexp, error) {
	parts := strings.Split(r.Pattern, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

// Clone returns a deep copy of the route.
func (r *Route) Clone() *Route {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Destinations = append([]string(nil), r.Destinations...)
	clone.Transformations = append([]string(nil), r.Transformations...)
	if r.Conditions != nil {
		clone.Conditions = make(map[string]interface{}, len(r.Conditions))
		for k, v := range r.Conditions {
			clone.Conditions[k] = v
		}
	}
	return &clone
}
