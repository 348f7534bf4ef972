package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
)

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewLoggerFromCore(core)

	h := RequestLogging(logger, DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/screenings/current", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/screenings/current", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestRequestLogging_SkipsProbePaths(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewLoggerFromCore(core)

	h := RequestLogging(logger, DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Zero(t, logs.Len())
}

func TestWrappedResponseWriter_DefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newWrappedResponseWriter(rec)

	_, err := w.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.statusCode)
	assert.EqualValues(t, 2, w.bytesWritten)
}
