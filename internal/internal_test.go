package internal

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var l Logger = NewZapLogger(zap.New(core).Sugar())

	l.With("component", "test").Warnw("careful", "baby_id", "b1")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "careful", entry.Message)
	assert.Equal(t, map[string]any{"component": "test", "baby_id": "b1"}, entry.ContextMap())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	l, err := NewLogger("production", "shouting")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewAppError(t *testing.T) {
	err := NewAppError(http.StatusNotFound, "Baby not accessible")
	assert.Equal(t, "not_found", err.Code)
	assert.Equal(t, "404 not_found: Baby not accessible", err.Error())
	assert.Equal(t, "error", NewAppError(http.StatusTeapot, "x").Code)
}
