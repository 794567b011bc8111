package flash

import (
	"fmt"
	"net/http"
	"reflect"

	"flashkit/session"

	"go.uber.org/zap"
)

const middlewareName = "flash.Middleware"

// Middleware creates Messages for every request from the session attached
// upstream and exposes them to downstream handlers.
type Middleware struct {
	name         string
	factory      Factory
	registry     *Registry
	sessionKey   string
	attributeKey string
	logger       *zap.Logger
	onError      func(w http.ResponseWriter, r *http.Request, err error)
}

type Option func(*Middleware)

// WithFactory injects the constructor used for every request. name
// identifies it in errors and logs.
func WithFactory(name string, f Factory) Option {
	return func(m *Middleware) {
		m.name = name
		m.factory = f
		m.registry = nil
	}
}

// WithImplementation selects the factory registered under name. A nil
// registry means NewRegistry().
func WithImplementation(name string, r *Registry) Option {
	return func(m *Middleware) {
		if r == nil {
			r = NewRegistry()
		}
		m.name = name
		m.factory = nil
		m.registry = r
	}
}

func WithSessionKey(key string) Option {
	return func(m *Middleware) {
		if key != "" {
			m.sessionKey = key
		}
	}
}

func WithAttributeKey(key string) Option {
	return func(m *Middleware) {
		if key != "" {
			m.attributeKey = key
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithErrorHandler replaces the response written by Handler when Messages
// cannot be attached.
func WithErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) Option {
	return func(m *Middleware) {
		if fn != nil {
			m.onError = fn
		}
	}
}

// NewMiddleware validates the configured implementation before any request
// is served. An unusable implementation yields *InvalidImplementationError.
func NewMiddleware(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		name:         DefaultImplementation,
		factory:      DefaultFactory,
		sessionKey:   DefaultSessionKey,
		attributeKey: DefaultAttributeKey,
		logger:       zap.NewNop(),
	}
	for _, apply := range opts {
		apply(m)
	}
	if m.onError == nil {
		m.onError = m.defaultErrorHandler
	}

	if m.registry != nil {
		f, err := m.registry.Lookup(m.name)
		if err != nil {
			return nil, err
		}
		m.factory = f
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// validate runs the factory once against a scratch session.
func (m *Middleware) validate() (err error) {
	if m.factory == nil {
		return &InvalidImplementationError{Name: m.name, Reason: "factory is nil"}
	}

	defer func() {
		if p := recover(); p != nil {
			err = &InvalidImplementationError{
				Name:   m.name,
				Reason: fmt.Sprintf("factory panicked: %v", p),
			}
		}
	}()

	msgs, ferr := m.factory(session.New(), m.sessionKey)
	if ferr != nil {
		return &InvalidImplementationError{
			Name:   m.name,
			Reason: "factory cannot create flash.Messages",
			Err:    ferr,
		}
	}
	if isNil(msgs) {
		return &InvalidImplementationError{
			Name:   m.name,
			Reason: "factory returned nil, expected an implementation of flash.Messages",
		}
	}
	return nil
}

// Attach builds Messages for r and returns r augmented with them. It fails
// with *MissingSessionError when no session was attached upstream.
func (m *Middleware) Attach(r *http.Request) (*http.Request, Messages, error) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return nil, nil, &MissingSessionError{Middleware: middlewareName}
	}

	msgs, err := m.factory(sess, m.sessionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("flash: create messages with %s: %w", m.name, err)
	}

	m.logger.Debug("Flash messages attached",
		zap.String("implementation", m.name),
		zap.String("session_key", m.sessionKey),
		zap.String("attribute_key", m.attributeKey),
		zap.Int("current", len(msgs.All())))

	ctx := NewContext(r.Context(), m.attributeKey, msgs)
	return r.WithContext(ctx), msgs, nil
}

// Process attaches Messages and invokes next with the augmented request.
// On error next is not called and the error is returned unchanged.
func (m *Middleware) Process(w http.ResponseWriter, r *http.Request, next http.Handler) error {
	req, _, err := m.Attach(r)
	if err != nil {
		return err
	}
	next.ServeHTTP(w, req)
	return nil
}

// Handler adapts Process to net/http; it satisfies mux.MiddlewareFunc.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.Process(w, r, next); err != nil {
			m.onError(w, r, err)
		}
	})
}

// FromRequest returns the Messages this middleware attached to r.
func (m *Middleware) FromRequest(r *http.Request) (Messages, bool) {
	return FromContext(r.Context(), m.attributeKey)
}

func (m *Middleware) Implementation() string { return m.name }
func (m *Middleware) SessionKey() string     { return m.sessionKey }
func (m *Middleware) AttributeKey() string   { return m.attributeKey }

func (m *Middleware) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Error("Flash messages unavailable",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func isNil(msgs Messages) bool {
	if msgs == nil {
		return true
	}
	v := reflect.ValueOf(msgs)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}
