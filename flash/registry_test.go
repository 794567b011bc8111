package flash

import (
	"errors"
	"testing"

	"flashkit/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Default(t *testing.T) {
	r := NewRegistry()

	f, err := r.Lookup(DefaultImplementation)
	require.NoError(t, err)

	msgs, err := f(session.New(), DefaultSessionKey)
	require.NoError(t, err)
	assert.IsType(t, &Store{}, msgs)
	assert.Equal(t, []string{DefaultImplementation}, r.Names())
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("recording", recordingFactory))
	assert.Equal(t, []string{DefaultImplementation, "recording"}, r.Names())

	t.Run("duplicate", func(t *testing.T) {
		err := r.Register("recording", recordingFactory)
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("empty name", func(t *testing.T) {
		assert.Error(t, r.Register("", recordingFactory))
	})

	t.Run("nil factory", func(t *testing.T) {
		assert.Error(t, r.Register("nothing", nil))
	})
}

func TestRegistry_LookupUnknown(t *testing.T) {
	_, err := NewRegistry().Lookup("missing")

	var implErr *InvalidImplementationError
	require.True(t, errors.As(err, &implErr))
	assert.Equal(t, "missing", implErr.Name)
	assert.ErrorIs(t, err, ErrInvalidImplementation)
}

func TestDefaultFactory_NilSession(t *testing.T) {
	msgs, err := DefaultFactory(nil, DefaultSessionKey)

	assert.Nil(t, msgs, "Factory must return an untyped nil on error")
	assert.ErrorIs(t, err, ErrNilSession)
}
