// Package directory provides the service directory: named service versions
// with endpoints, projection presets and optional response contracts.
package directory

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/x"
)

// Status values for directory entries.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Entry describes one registered service version.
type Entry struct {
	Name              string              `json:"name" yaml:"name"`
	Version           string              `json:"version" yaml:"version"`
	Endpoint          string              `json:"endpoint" yaml:"endpoint"`
	Status            string              `json:"status,omitempty" yaml:"status,omitempty"`
	ProjectionPresets map[string][]string `json:"projectionPresets,omitempty" yaml:"projectionPresets,omitempty"`
	// ResponseSchema declares valid response field paths when no Go contract
	// type is registered.
	ResponseSchema map[string]interface{} `json:"responseSchema,omitempty" yaml:"responseSchema,omitempty"`
	// ResponseType optionally binds a Go contract type; field paths are then
	// derived by reflection.
	ResponseType *x.Type `json:"-" yaml:"-"`
}

// Active reports whether the entry accepts traffic.
func (e *Entry) Active() bool {
	return e.Status == "" || e.Status == StatusActive
}

// Preset returns the named projection preset.
func (e *Entry) Preset(name string) ([]string, bool) {
	fields, ok := e.ProjectionPresets[name]
	return fields, ok
}

// Service is an in-memory service directory.
type Service struct {
	mux     sync.RWMutex
	entries map[string][]*Entry
	types   *x.Registry
}

// New creates an empty directory.
func New() *Service {
	return &Service{
		entries: map[string][]*Entry{},
		types:   x.NewRegistry(),
	}
}

// Register adds or replaces a service version entry.
func (s *Service) Register(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry was nil")
	}
	if entry.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if entry.Endpoint == "" {
		return fmt.Errorf("service %s: endpoint is required", entry.Name)
	}
	if entry.ResponseType != nil {
		s.types.Register(entry.ResponseType)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	versions := s.entries[entry.Name]
	for i, candidate := range versions {
		if candidate.Version == entry.Version {
			versions[i] = entry
			return nil
		}
	}
	s.entries[entry.Name] = append(versions, entry)
	return nil
}

// RegisterType binds a Go response contract to an already registered service
// version.
func (s *Service) RegisterType(name, version string, rType reflect.Type) error {
	entry, err := s.Resolve(name, version)
	if err != nil {
		return err
	}
	entry.ResponseType = x.NewType(rType)
	s.types.Register(entry.ResponseType)
	return nil
}

// Resolve returns the entry for a service name and version. An empty version
// selects the first active version, falling back to any version.
func (s *Service) Resolve(name, version string) (*Entry, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	versions := s.entries[name]
	if len(versions) == 0 {
		return nil, fmt.Errorf("service %q is not registered", name)
	}
	if version != "" {
		for _, entry := range versions {
			if entry.Version == version {
				return entry, nil
			}
		}
		return nil, fmt.Errorf("service %q has no version %q", name, version)
	}
	for _, entry := range versions {
		if entry.Active() {
			return entry, nil
		}
	}
	return versions[0], nil
}

// Has reports whether any version of the named service is registered.
func (s *Service) Has(name string) bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.entries[name]) > 0
}

// List returns all registered entries.
func (s *Service) List() []*Entry {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var out []*Entry
	for _, versions := range s.entries {
		out = append(out, versions...)
	}
	return out
}
