package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "flash-next", cfg.SessionKey)
	assert.Equal(t, "flash", cfg.AttributeKey)
	assert.Equal(t, "flash.Store", cfg.Implementation)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Development)
}

func TestLoad(t *testing.T) {
	t.Setenv("FLASHKIT_ADDR", ":8080")
	t.Setenv("FLASHKIT_SESSION_KEY", "next")
	t.Setenv("FLASHKIT_ATTRIBUTE_KEY", "msgs")
	t.Setenv("FLASHKIT_LOG_LEVEL", "debug")
	t.Setenv("FLASHKIT_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "next", cfg.SessionKey)
	assert.Equal(t, "msgs", cfg.AttributeKey)
	assert.True(t, cfg.Development)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"blank session key", "FLASHKIT_SESSION_KEY", "  "},
		{"blank attribute key", "FLASHKIT_ATTRIBUTE_KEY", " "},
		{"unknown log level", "FLASHKIT_LOG_LEVEL", "loud"},
		{"bad bool", "FLASHKIT_DEV", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
