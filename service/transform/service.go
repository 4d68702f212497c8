// Package transform provides the named message-transformation registry the
// router applies before dispatching to destinations.
package transform

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/conduit/model"
)

// Transform mutates a message copy on its way to a destination.
type Transform interface {
	Name() string
	Apply(ctx context.Context, message *model.Message) (*model.Message, error)
}

// Func adapts a function to the Transform interface.
type Func struct {
	name string
	fn   func(ctx context.Context, message *model.Message) (*model.Message, error)
}

func (f *Func) Name() string { return f.name }

func (f *Func) Apply(ctx context.Context, message *model.Message) (*model.Message, error) {
	return f.fn(ctx, message)
}

// NewFunc creates a named functional transform.
func NewFunc(name string, fn func(ctx context.Context, message *model.Message) (*model.Message, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Registry holds named transforms.
type Registry struct {
	mux        sync.RWMutex
	transforms map[string]Transform
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: map[string]Transform{}}
}

// Register adds a transform under its name.
func (r *Registry) Register(transform Transform) {
	if transform == nil {
		return
	}
	r.mux.Lock()
	r.transforms[transform.Name()] = transform
	r.mux.Unlock()
}

// Lookup returns a transform by name.
func (r *Registry) Lookup(name string) Transform {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.transforms[name]
}

// Apply runs the named transforms in order against a clone of the message.
// Unknown names fail the chain.
func (r *Registry) Apply(ctx context.Context, names []string, message *model.Message) (*model.Message, error) {
	if len(names) == 0 {
		return message, nil
	}
	current := message.Clone()
	for _, name := range names {
		transform := r.Lookup(name)
		if transform == nil {
			return nil, fmt.Errorf("unknown transformation %q", name)
		}
		next, err := transform.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("transformation %q failed: %w", name, err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}
