package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	return router
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware())
	var seen string
	router.GET("/test", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusOK, w.Code)
	responseID := w.Header().Get(RequestIDHeader)
	assert.Len(t, responseID, 8)
	assert.Equal(t, responseID, seen)
}

func TestRequestIDMiddleware_UsesExistingID(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "upstream-req_42.a")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "upstream-req_42.a", w.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddleware_ReplacesUnsafeID(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, bad := range []string{"has space", "line\tbreak", "quote\"d", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, bad)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		got := w.Header().Get(RequestIDHeader)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 8)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))
}
