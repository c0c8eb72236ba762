package limiter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestLimiter(r rate.Limit, b int) *IPRateLimiter {
	return NewIPRateLimiter(slog.New(slog.NewTextHandler(io.Discard, nil)), r, b)
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	t.Run("Rejects an address once its burst is spent", func(t *testing.T) {
		// Given: a limiter that allows two requests and never refills in the test window
		limiter := newTestLimiter(rate.Every(time.Hour), 2)
		handler := limiter.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))

		serve := func(remoteAddr string) int {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.RemoteAddr = remoteAddr
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			return recorder.Code
		}

		// When: one address sends three requests
		codes := []int{serve("10.0.0.1:1000"), serve("10.0.0.1:1001"), serve("10.0.0.1:1002")}

		// Then: the third is rejected while another address is unaffected
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		assert.Equal(t, http.StatusOK, serve("10.0.0.2:1000"))
	})
}

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	limiter := newTestLimiter(rate.Limit(1), 1)

	first := limiter.GetLimiter("10.0.0.1")
	second := limiter.GetLimiter("10.0.0.1")

	assert.Same(t, first, second)
	assert.NotSame(t, first, limiter.GetLimiter("10.0.0.2"))
}

func TestIPRateLimiter_CleanUp(t *testing.T) {
	// Given: one idle address and one that has just spent its token
	limiter := newTestLimiter(rate.Every(time.Hour), 1)
	limiter.GetLimiter("10.0.0.1")
	require.True(t, limiter.GetLimiter("10.0.0.2").Allow())

	// When: the cleanup runs
	removed := limiter.cleanUp(time.Now())

	// Then: only the idle bucket is dropped
	assert.Equal(t, 1, removed)
	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	assert.Contains(t, limiter.limits, "10.0.0.2")
	assert.NotContains(t, limiter.limits, "10.0.0.1")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.RemoteAddr = ""
	assert.Equal(t, "unknown_ip", ClientIP(req))
}
