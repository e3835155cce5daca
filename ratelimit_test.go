package bridge_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/bridge"
)

func TestRateLimit_allows_within_burst(t *testing.T) {
	t.Parallel()

	h := bridge.RateLimit(bridge.RateLimitConfig{Rate: 1, Burst: 2})(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, limitedRequest())
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_rejects_over_burst(t *testing.T) {
	t.Parallel()

	h := bridge.RateLimit(bridge.RateLimitConfig{Rate: 1, Burst: 1})(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, limitedRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, limitedRequest())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimit_keys_are_independent(t *testing.T) {
	t.Parallel()

	h := bridge.RateLimit(bridge.RateLimitConfig{Rate: 1, Burst: 1})(okHandler())

	a := httptest.NewRequest(http.MethodGet, "/", nil)
	a.RemoteAddr = "192.0.2.10:1111"
	b := httptest.NewRequest(http.MethodGet, "/", nil)
	b.RemoteAddr = "192.0.2.11:2222"

	w := httptest.NewRecorder()
	h.ServeHTTP(w, a)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, b)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_custom_on_limit(t *testing.T) {
	t.Parallel()

	h := bridge.RateLimit(bridge.RateLimitConfig{
		Rate:  1,
		Burst: 1,
		OnLimit: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	})(okHandler())

	h.ServeHTTP(httptest.NewRecorder(), limitedRequest())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, limitedRequest())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limitedRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.7:4242"
	return r
}
