package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heartrisk/internal/logs"
	"heartrisk/internal/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryMiddleware(t *testing.T) {
	logger := logs.NewLogger(10, logs.DEBUG).WithSink(nil)
	reg := metrics.NewRegistry()

	// 1. Create a handler that intentionally panics
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom!")
	})

	// 2. Wrap it with the RecoveryMiddleware
	recoveredHandler := RecoveryMiddleware(logger, reg)(panicHandler)

	// 3. Send a request to it
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	recoveredHandler.ServeHTTP(rr, req)

	// 4. Assert that we got a 500 status back instead of a crash
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
	assert.Equal(t, int64(1), reg.Get(metrics.HTTPPanicsTotal))

	entries := logger.GetLast(1)
	require.Len(t, entries, 1)
	assert.Equal(t, logs.ERROR, entries[0].Level)
	assert.Equal(t, "panic recovered", entries[0].Message)
	assert.Equal(t, "boom!", entries[0].Attrs["err"])
}

func TestChain(t *testing.T) {
	// This test ensures Chain actually wraps in order
	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				w.Header().Set("X-"+name, "true")
				next.ServeHTTP(w, r)
			})
		}
	}

	chained := Chain(finalHandler, mark("Outer"), mark("Inner"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	chained.ServeHTTP(rr, req)

	assert.Equal(t, "true", rr.Header().Get("X-Outer"))
	assert.Equal(t, "true", rr.Header().Get("X-Inner"))
	assert.Equal(t, []string{"Outer", "Inner"}, order)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	t.Run("Generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	})

	t.Run("EmptyContext", func(t *testing.T) {
		assert.Equal(t, "", RequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	logger := logs.NewLogger(10, logs.DEBUG).WithSink(nil)
	reg := metrics.NewRegistry()

	t.Run("RecordsStatus", func(t *testing.T) {
		handler := LoggingMiddleware(logger, reg, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		entry := logger.GetLast(1)[0]
		assert.Equal(t, logs.DEBUG, entry.Level)
		assert.Equal(t, "request", entry.Message)
		assert.Equal(t, http.StatusTeapot, entry.Attrs["status"])
		assert.Equal(t, "/health", entry.Attrs["path"])
		assert.Equal(t, int64(1), reg.Get(metrics.HTTPRequestsTotal))
	})

	t.Run("SlowRequestWarns", func(t *testing.T) {
		handler := LoggingMiddleware(logger, reg, time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Millisecond)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/predict", nil))

		entry := logger.GetLast(1)[0]
		assert.Equal(t, logs.WARN, entry.Level)
		assert.Equal(t, "slow request", entry.Message)
	})
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("AnyOrigin", func(t *testing.T) {
		handler := CORSMiddleware([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodPost, "/api/predict", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Preflight", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://app.example.com"})(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "content-type", rr.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("DisallowedOrigin", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://app.example.com"})(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
