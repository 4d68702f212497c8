package workflow

import "github.com/viant/conduit/service/meta"

// Option customises the workflow definition service.
type Option func(*Service)

// WithMetaService overrides the definition loader.
func WithMetaService(metaService *meta.Service) Option {
	return func(s *Service) {
		s.metaService = metaService
	}
}
