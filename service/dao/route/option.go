package route

import "github.com/viant/conduit/service/meta"

// Option customises the route registry.
type Option func(*Service)

// WithMetaService overrides the definition loader.
func WithMetaService(metaService *meta.Service) Option {
	return func(s *Service) {
		s.metaService = metaService
	}
}
