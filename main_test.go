package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/staff-accounts/src/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginRouter(t *testing.T, trustedProxies []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router, err := newRouter(trustedProxies)
	require.NoError(t, err)

	limiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{RequestsPerMinute: 1, Burst: 2})
	t.Cleanup(limiter.Stop)

	router.POST("/auth/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func sendLogin(router *gin.Engine, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestNewRouter_ForwardedForIgnoredWithoutTrustedProxies(t *testing.T) {
	router := loginRouter(t, nil)

	assert.Equal(t, http.StatusOK, sendLogin(router, "203.0.113.7:4000", "198.51.100.1"))
	assert.Equal(t, http.StatusOK, sendLogin(router, "203.0.113.7:4001", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, sendLogin(router, "203.0.113.7:4002", "198.51.100.3"))
}

func TestNewRouter_TrustedProxyForwardsClientIP(t *testing.T) {
	router := loginRouter(t, []string{"10.0.0.0/8"})

	for _, client := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		assert.Equal(t, http.StatusOK, sendLogin(router, "10.0.0.5:4000", client))
	}

	assert.Equal(t, http.StatusOK, sendLogin(router, "10.0.0.5:4000", "198.51.100.9"))
	assert.Equal(t, http.StatusOK, sendLogin(router, "10.0.0.5:4000", "198.51.100.9"))
	assert.Equal(t, http.StatusTooManyRequests, sendLogin(router, "10.0.0.5:4000", "198.51.100.9"))

	// an untrusted peer cannot pick its own key
	assert.Equal(t, http.StatusOK, sendLogin(router, "203.0.113.7:4000", "198.51.100.20"))
	assert.Equal(t, http.StatusOK, sendLogin(router, "203.0.113.7:4000", "198.51.100.21"))
	assert.Equal(t, http.StatusTooManyRequests, sendLogin(router, "203.0.113.7:4000", "198.51.100.22"))
}

func TestNewRouter_InvalidProxy(t *testing.T) {
	_, err := newRouter([]string{"not-an-ip"})
	assert.ErrorContains(t, err, "invalid trusted proxies")
}
