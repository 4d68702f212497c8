// Package route provides the routing-rule registry: YAML-backed loading and
// an active-by-priority view consumed by the message router.
package route

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/conduit/internal/idgen"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/meta"
)

// Service loads and stores routing rules.
type Service struct {
	metaService *meta.Service
	mux         sync.RWMutex
	routes      map[string]*model.Route
}

// New creates a route registry.
func New(opts ...Option) *Service {
	ret := &Service{
		metaService: meta.New(afs.New(), ""),
		routes:      map[string]*model.Route{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Load reads a YAML document holding a list of routes and registers them.
func (s *Service) Load(ctx context.Context, URL string) ([]*model.Route, error) {
	var document struct {
		Routes []*model.Route `yaml:"routes"`
	}
	if err := s.metaService.Load(ctx, URL, &document); err != nil {
		return nil, fmt.Errorf("failed to load routes from %s: %w", URL, err)
	}
	for _, candidate := range document.Routes {
		if err := s.Add(candidate); err != nil {
			return nil, err
		}
	}
	return document.Routes, nil
}

// Add validates and registers a single route.
func (s *Service) Add(route *model.Route) error {
	if route == nil {
		return fmt.Errorf("route was nil")
	}
	if err := route.Validate(); err != nil {
		return err
	}
	if route.ID == "" {
		route.ID = idgen.New()
	}
	s.mux.Lock()
	s.routes[route.ID] = route
	s.mux.Unlock()
	return nil
}

// Remove drops a route by id.
func (s *Service) Remove(id string) {
	s.mux.Lock()
	delete(s.routes, id)
	s.mux.Unlock()
}

// Get returns a route by id.
func (s *Service) Get(id string) (*model.Route, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	route, ok := s.routes[id]
	return route, ok
}

// ActiveByPriority returns clones of all active routes ordered by descending
// priority; ties keep a stable name order.
func (s *Service) ActiveByPriority() []*model.Route {
	s.mux.RLock()
	out := make([]*model.Route, 0, len(s.routes))
	for _, route := range s.routes {
		if route.IsActive {
			out = append(out, route.Clone())
		}
	}
	s.mux.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}
