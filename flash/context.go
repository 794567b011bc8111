package flash

import (
	"context"
	"net/http"
)

// DefaultAttributeKey is the request attribute the middleware stores
// Messages under.
const DefaultAttributeKey = "flash"

type attributeKey string

// NewContext returns a copy of ctx carrying m under key.
func NewContext(ctx context.Context, key string, m Messages) context.Context {
	return context.WithValue(ctx, attributeKey(key), m)
}

// FromContext returns the Messages stored under key.
func FromContext(ctx context.Context, key string) (Messages, bool) {
	m, ok := ctx.Value(attributeKey(key)).(Messages)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// FromRequest returns the Messages stored under DefaultAttributeKey.
func FromRequest(r *http.Request) (Messages, bool) {
	return FromContext(r.Context(), DefaultAttributeKey)
}
