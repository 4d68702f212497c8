// Package memory provides the in-memory message audit log store.
package memory

import (
	"context"
	"sort"

	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/criteria"
	"github.com/viant/conduit/service/dao/store"
)

// Service stores message audit log entries.
type Service struct {
	*store.MemoryStore[string, model.MessageLog]
}

var _ dao.Service[string, model.MessageLog] = (*Service)(nil)

// New constructor.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, model.MessageLog](func(entry *model.MessageLog) string {
			return entry.ID
		}),
	}
}

// List returns log entries matching the criteria ordered by creation time;
// CorrelationID, MessageID, Status and RouteName are supported.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.MessageLog, error) {
	entries, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.MessageLog, 0, len(entries))
	for _, entry := range entries {
		if !criteria.Matches(parameters, func(name string) (string, bool) {
			switch name {
			case "CorrelationID":
				return entry.CorrelationID, true
			case "MessageID":
				return entry.MessageID, true
			case "Status":
				return entry.Status, true
			case "RouteName":
				return entry.RouteName, true
			}
			return "", false
		}) {
			continue
		}
		out = append(out, entry.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
