package flash

import (
	"fmt"
	"sort"
	"sync"

	"flashkit/session"
)

// DefaultImplementation names the Store factory in registries.
const DefaultImplementation = "flash.Store"

// Factory builds the Messages for one request from the request's session
// and the configured session key.
type Factory func(sess session.Session, sessionKey string) (Messages, error)

// DefaultFactory creates a *Store.
var DefaultFactory Factory = func(sess session.Session, sessionKey string) (Messages, error) {
	s, err := New(sess, sessionKey)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Registry maps implementation names to factories, so the implementation
// can be chosen from configuration.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry with DefaultFactory registered under
// DefaultImplementation.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{
			DefaultImplementation: DefaultFactory,
		},
	}
}

// Register adds a factory. Names must be unique and non-empty.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("flash: register: empty implementation name")
	}
	if f == nil {
		return fmt.Errorf("flash: register %q: nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("flash: register %q: already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, &InvalidImplementationError{
			Name:   name,
			Reason: "no such implementation is registered",
		}
	}
	return f, nil
}

// Names lists registered implementations in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
