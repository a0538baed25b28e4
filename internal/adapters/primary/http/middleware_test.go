package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("test response"))
	})

	wrapped := createLoggingMiddleware(handler, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/diff", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, logs.String(), `"msg":"HTTP request"`)
	assert.Contains(t, logs.String(), `"path":"/api/diff"`)
	assert.Contains(t, logs.String(), `"status":201`)
	assert.Contains(t, logs.String(), `"bytes":13`)
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("normal response"))
		})

		wrapped := createRecoveryMiddleware(handler, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "normal response", w.Body.String())
	})

	t.Run("panic recovery", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		})

		wrapped := createRecoveryMiddleware(handler, logger)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		assert.NotPanics(t, func() { wrapped.ServeHTTP(w, req) })
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, logs.String(), "test panic")
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	wrapped := securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.isAllowed("10.0.0.1"))
	assert.True(t, limiter.isAllowed("10.0.0.1"))
	assert.False(t, limiter.isAllowed("10.0.0.1"))

	// Other clients have their own budget
	assert.True(t, limiter.isAllowed("10.0.0.2"))

	// The window slides
	now = now.Add(61 * time.Second)
	assert.True(t, limiter.isAllowed("10.0.0.1"))

	// Idle clients are pruned
	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.isAllowed("10.0.0.3"))
	assert.Len(t, limiter.clients, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := newRateLimiter(1, time.Minute)
	wrapped := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), limiter, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5000"

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, req)
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	t.Run("rotating forwarded headers share the peer budget", func(t *testing.T) {
		limiter := newRateLimiter(2, time.Minute)
		wrapped := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}), limiter, nil)

		codes := make([]int, 0, 4)
		for i := 1; i <= 4; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:5000"
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
			req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))

			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{
			http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests,
		}, codes)
	})

	t.Run("clients behind a trusted proxy are limited separately", func(t *testing.T) {
		limiter := newRateLimiter(1, time.Minute)
		wrapped := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}), limiter, newTrustedProxies([]string{"10.0.0.0/8"}))

		for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.1.2.3:5000"
			req.Header.Set("X-Forwarded-For", client)

			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)
			assert.Equal(t, http.StatusNoContent, w.Code, client)
		}
	})
}

func TestTrustedProxiesClientIP(t *testing.T) {
	proxies := newTrustedProxies([]string{"10.0.0.0/8", "192.0.2.50", "not-a-proxy"})

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"no port", "192.0.2.1", nil, "192.0.2.1"},
		{"forwarded for from untrusted peer", "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "192.0.2.1"},
		{"real ip from untrusted peer", "192.0.2.1:1234", map[string]string{"X-Real-IP": "198.51.100.7"}, "192.0.2.1"},
		{"forwarded for from loopback", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded for from ipv6 loopback", "[::1]:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"real ip from loopback", "127.0.0.1:1234", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"forwarded for from configured range", "10.4.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded for from configured ip", "192.0.2.50:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"rightmost untrusted hop wins", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "198.51.100.1, 203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"all hops trusted", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "10.0.0.3, 10.0.0.2"}, "10.0.0.3"},
		{"invalid header ignored", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "not-an-ip"}, "127.0.0.1"},
		{"invalid hop stops the walk", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9, junk"}, "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, proxies.clientIP(req))
		})
	}
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := &responseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}

	t.Run("write header", func(t *testing.T) {
		wrapped.WriteHeader(http.StatusCreated)
		assert.Equal(t, http.StatusCreated, wrapped.status)
	})

	t.Run("multiple writes", func(t *testing.T) {
		n1, err := wrapped.Write([]byte("first "))
		assert.NoError(t, err)
		assert.Equal(t, 6, n1)

		n2, err := wrapped.Write([]byte("second"))
		assert.NoError(t, err)
		assert.Equal(t, 6, n2)

		assert.Equal(t, 12, wrapped.size)
	})

	t.Run("hijack unsupported by recorder", func(t *testing.T) {
		_, _, err := wrapped.Hijack()
		assert.Error(t, err)
	})
}
