// Package clients provides the client registry: callers known to the bus and
// their per-service default response projections.
package clients

import (
	"fmt"
	"sync"
)

// Projection is a client's default shaping for one target service: either a
// named preset or an explicit field list.
type Projection struct {
	Preset string   `json:"preset,omitempty" yaml:"preset,omitempty"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Client describes a registered caller.
type Client struct {
	ID                 string                 `json:"id" yaml:"id"`
	Name               string                 `json:"name,omitempty" yaml:"name,omitempty"`
	DefaultProjections map[string]*Projection `json:"defaultProjections,omitempty" yaml:"defaultProjections,omitempty"`
}

// Service is an in-memory client registry.
type Service struct {
	mux     sync.RWMutex
	clients map[string]*Client
}

// New creates an empty registry.
func New() *Service {
	return &Service{clients: map[string]*Client{}}
}

// Register adds or replaces a client.
func (s *Service) Register(client *Client) error {
	if client == nil {
		return fmt.Errorf("client was nil")
	}
	if client.ID == "" {
		return fmt.Errorf("client id is required")
	}
	s.mux.Lock()
	s.clients[client.ID] = client
	s.mux.Unlock()
	return nil
}

// Get returns a client by id.
func (s *Service) Get(id string) (*Client, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	client, ok := s.clients[id]
	return client, ok
}

// DefaultProjection returns the client's default projection for a service, or
// nil when the client or default is absent.
func (s *Service) DefaultProjection(clientID, serviceName string) *Projection {
	s.mux.RLock()
	defer s.mux.RUnlock()
	client, ok := s.clients[clientID]
	if !ok {
		return nil
	}
	return client.DefaultProjections[serviceName]
}
