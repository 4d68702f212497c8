// Package workflow provides the workflow-definition registry: YAML-backed
// loading with an in-memory cache keyed by location, plus ad-hoc upserts.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/conduit/internal/idgen"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/meta"
	"gopkg.in/yaml.v3"
)

// Service loads, caches and validates workflow definitions.
type Service struct {
	metaService *meta.Service
	mux         sync.RWMutex
	cache       map[string]*model.Workflow
	byID        map[string]*model.Workflow
}

// New creates a workflow definition service.
func New(opts ...Option) *Service {
	ret := &Service{
		metaService: meta.New(afs.New(), ""),
		cache:       map[string]*model.Workflow{},
		byID:        map[string]*model.Workflow{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// DecodeYAML decodes and validates a workflow definition.
func (s *Service) DecodeYAML(encoded []byte) (*model.Workflow, error) {
	workflow := &model.Workflow{}
	if err := yaml.Unmarshal(encoded, workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow: %w", err)
	}
	normalize(workflow, "")
	if issues := workflow.Validate(); len(issues) > 0 {
		return nil, model.NewValidationError(workflow.Name, issues...)
	}
	return workflow, nil
}

// Load fetches a workflow definition from the given URL, caching the parsed
// result until Refresh discards it.
func (s *Service) Load(ctx context.Context, URL string) (*model.Workflow, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	s.mux.RLock()
	cached, ok := s.cache[URL]
	s.mux.RUnlock()
	if ok {
		return cached, nil
	}

	workflow := &model.Workflow{}
	if err := s.metaService.Load(ctx, URL, workflow); err != nil {
		return nil, fmt.Errorf("failed to load workflow from %s: %w", URL, err)
	}
	normalize(workflow, URL)
	if issues := workflow.Validate(); len(issues) > 0 {
		return nil, model.NewValidationError(workflow.Name, issues...)
	}
	s.store(URL, workflow)
	return workflow, nil
}

// Upsert stores a parsed definition in the cache under the given location.
func (s *Service) Upsert(location string, workflow *model.Workflow) {
	if workflow == nil {
		return
	}
	normalize(workflow, location)
	s.store(location, workflow)
}

// Get returns a cached definition by its id or name.
func (s *Service) Get(id string) (*model.Workflow, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	workflow, ok := s.byID[id]
	return workflow, ok
}

// List returns all cached definitions.
func (s *Service) List() []*model.Workflow {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*model.Workflow, 0, len(s.byID))
	for _, workflow := range s.byID {
		out = append(out, workflow)
	}
	return out
}

// Refresh discards the cached copy under the given location; the next Load
// re-reads the source.
func (s *Service) Refresh(location string) {
	if filepath.Ext(location) == "" {
		location += ".yaml"
	}
	s.mux.Lock()
	if cached, ok := s.cache[location]; ok {
		delete(s.byID, cached.ID)
		delete(s.cache, location)
	}
	s.mux.Unlock()
}

func (s *Service) store(location string, workflow *model.Workflow) {
	s.mux.Lock()
	s.cache[location] = workflow
	s.byID[workflow.ID] = workflow
	if workflow.Name != "" && workflow.Name != workflow.ID {
		s.byID[workflow.Name] = workflow
	}
	s.mux.Unlock()
}

// normalize fills derived fields: name from location, id when absent, source.
func normalize(workflow *model.Workflow, location string) {
	if workflow.Name == "" && location != "" {
		base := filepath.Base(location)
		workflow.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if workflow.ID == "" {
		if workflow.Name != "" {
			workflow.ID = workflow.Name
		} else {
			workflow.ID = idgen.New()
		}
	}
	if location != "" {
		if workflow.Source == nil {
			workflow.Source = &model.Source{URL: location}
		} else if workflow.Source.URL == "" {
			workflow.Source.URL = location
		}
	}
}
