// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceLogger() (*bytes.Buffer, zerolog.Logger) {
	var buf bytes.Buffer
	return &buf, zerolog.New(&buf).Level(zerolog.TraceLevel)
}

func TestLoggerAccessEntry(t *testing.T) {
	buf, logger := traceLogger()

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"id":7}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/scans", strings.NewReader(`{"trigger":"api"}`))
	req.Header.Set("User-Agent", "linkarr-e2e/0.1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, `{"id":7}`, rec.Body.String())

	entry := buf.String()
	assert.Contains(t, entry, `"type":"access"`)
	assert.Contains(t, entry, `"url":"/api/scans"`)
	assert.Contains(t, entry, `"method":"POST"`)
	assert.Contains(t, entry, `"status":202`)
	assert.Contains(t, entry, `"user_agent":"linkarr-e2e/0.1"`)
	assert.Contains(t, entry, "latency_ms")
	assert.Contains(t, entry, "bytes_in")
	assert.Contains(t, entry, `"bytes_out":8`)
}

func TestLoggerImplicitOK(t *testing.T) {
	buf, logger := traceLogger()

	// Handlers that write without calling WriteHeader still log a 200.
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz/liveness", nil))

	assert.Contains(t, buf.String(), `"status":200`)
}

func TestLoggerStatusCodes(t *testing.T) {
	for _, code := range []int{
		http.StatusOK,
		http.StatusNoContent,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusServiceUnavailable,
	} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			buf, logger := traceLogger()

			handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orphans", nil))

			assert.Equal(t, code, rec.Code)
			assert.Contains(t, buf.String(), `"status":`)
		})
	}
}

func TestLoggerRecoversPanic(t *testing.T) {
	buf, logger := traceLogger()

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("scan store exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans/3", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entry := buf.String()
	assert.Contains(t, entry, `"type":"error"`)
	assert.Contains(t, entry, "scan store exploded")
	// The access entry is still written after recovery.
	assert.Contains(t, entry, `"type":"access"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hardlinks", nil))

	// Access entries log at trace, so an info-level logger stays quiet.
	assert.Empty(t, buf.String())
}

func TestChiReexports(t *testing.T) {
	assert.NotNil(t, RequestID)
	assert.NotNil(t, Recoverer)
	assert.NotNil(t, RealIP)
	assert.NotNil(t, ThrottleBacklog)
}
