// Package correlation tracks which executions are currently running under a
// given correlation id so that inbound responses can be folded back into
// their variable context.
package correlation

import "sync"

// Index is an in-memory correlation-id to running-execution-ids map. It can
// be replaced by a Redis or DB implementation later without changing callers.
type Index struct {
	mu     sync.RWMutex
	active map[string]map[string]bool
}

func NewIndex() *Index {
	return &Index{active: make(map[string]map[string]bool)}
}

// Register associates an execution with a correlation id.
func (i *Index) Register(correlationID, executionID string) {
	if correlationID == "" || executionID == "" {
		return
	}
	i.mu.Lock()
	group, ok := i.active[correlationID]
	if !ok {
		group = make(map[string]bool)
		i.active[correlationID] = group
	}
	group[executionID] = true
	i.mu.Unlock()
}

// Remove drops an execution from its correlation group; empty groups are
// removed entirely.
func (i *Index) Remove(correlationID, executionID string) {
	if correlationID == "" {
		return
	}
	i.mu.Lock()
	if group, ok := i.active[correlationID]; ok {
		delete(group, executionID)
		if len(group) == 0 {
			delete(i.active, correlationID)
		}
	}
	i.mu.Unlock()
}

// Executions returns the ids of executions registered under the correlation id.
func (i *Index) Executions(correlationID string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	group := i.active[correlationID]
	if len(group) == 0 {
		return nil
	}
	ids := make([]string, 0, len(group))
	for id := range group {
		ids = append(ids, id)
	}
	return ids
}
