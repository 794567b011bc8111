// Package session defines the session capability consumed by the flash
// package and how a session travels with a request.
package session

import (
	"context"
	"sync"
)

// Session is a mutable key-value space tied to one client.
// Persistence, locking across processes and cookie transport belong to
// whatever attaches the session to the request.
type Session interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Unset(key string)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by NewContext.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// Values is an in-memory Session safe for concurrent use.
type Values struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates an empty Values session.
func New() *Values {
	return &Values{values: make(map[string]any)}
}

func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.values[key]
	return val, ok
}

func (v *Values) Set(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.values == nil {
		v.values = make(map[string]any)
	}
	v.values[key] = value
}

func (v *Values) Unset(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.values, key)
}

// Has reports whether key is present.
func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of keys held.
func (v *Values) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.values)
}
