// Package meta loads YAML definition documents through the abstract file
// storage layer, expanding ${env.KEY} expressions before decoding.
package meta

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service resolves definition URLs against a base location and decodes YAML.
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// New creates a meta service; baseURL may be empty, in which case locations
// are used verbatim.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

// Load downloads the document at the given location and unmarshals it into
// target after environment-expression expansion.
func (s *Service) Load(ctx context.Context, location string, target interface{}) error {
	URL := s.resolveURL(location)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.fsOptions...)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", URL, err)
	}
	expanded := expandEnvExpr(string(data))
	if err = yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

func (s *Service) resolveURL(location string) string {
	if s.baseURL == "" || url.Scheme(location, "") != "" {
		return location
	}
	return url.Join(s.baseURL, location)
}
