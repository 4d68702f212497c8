// Package memory provides the in-memory ServiceCall audit store.
package memory

import (
	"context"
	"sync"

	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/criteria"
)

// Service stores ServiceCall audit records.
type Service struct {
	calls map[string]*model.ServiceCall
	order []string
	mux   sync.RWMutex
}

var _ dao.Service[string, model.ServiceCall] = (*Service)(nil)

// New constructor.
func New() *Service {
	return &Service{calls: map[string]*model.ServiceCall{}}
}

// Save persists (a clone of) the supplied call record.
func (s *Service) Save(_ context.Context, call *model.ServiceCall) error {
	if call == nil {
		return dao.ErrNilEntity
	}
	if call.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.calls[call.ID]; !ok {
		s.order = append(s.order, call.ID)
	}
	s.calls[call.ID] = call.Clone()
	return nil
}

// Load retrieves a copy of a call record or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id string) (*model.ServiceCall, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	call, ok := s.calls[id]
	s.mux.RUnlock()
	if !ok {
		return nil, dao.ErrNotFound
	}
	return call.Clone(), nil
}

// Delete removes a call record.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.calls[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.calls, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns copies of call records matching the criteria in insertion
// order; CorrelationID, ServiceName, ClientID and Status are supported.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.ServiceCall, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*model.ServiceCall, 0, len(s.order))
	for _, id := range s.order {
		call := s.calls[id]
		if !criteria.Matches(parameters, func(name string) (string, bool) {
			switch name {
			case "CorrelationID":
				return call.CorrelationID, true
			case "ServiceName":
				return call.ServiceName, true
			case "ClientID":
				return call.ClientID, true
			case "Status":
				return string(call.Status), true
			}
			return "", false
		}) {
			continue
		}
		out = append(out, call.Clone())
	}
	return out, nil
}

// Stats aggregates success/failure counts over records matching the criteria.
func (s *Service) Stats(ctx context.Context, parameters ...*dao.Parameter) (*model.CallStats, error) {
	calls, err := s.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	stats := &model.CallStats{Total: len(calls)}
	var totalTime int64
	for _, call := range calls {
		switch call.Status {
		case model.CallStatusSuccess:
			stats.Successful++
		case model.CallStatusFailed, model.CallStatusTimeout:
			stats.Failed++
		}
		totalTime += call.ExecutionTimeMs
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total)
		stats.AvgExecutionTimeMs = totalTime / int64(stats.Total)
	}
	return stats, nil
}
