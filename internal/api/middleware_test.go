package api_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/api"
	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/stretchr/testify/assert"
)

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.RateLimitMiddleware(0.001, 1))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ping", nil).Code)
	w := serve(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.CORSMiddleware(config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		MaxAge:         600,
	}))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := serve(router, http.MethodOptions, "/ping", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	w = serve(router, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestVersionMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api.RegisterDeprecatedVersion(api.DeprecatedVersionInfo{
		Version:         "v0",
		DeprecationDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SunsetDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MigrationPath:   "/api/v1",
	})

	router := gin.New()
	router.Use(api.VersionMiddleware())
	router.GET("/api/:version/ping", func(c *gin.Context) { c.String(http.StatusOK, api.GetAPIVersion(c)) })

	w := serve(router, http.MethodGet, "/api/v1/ping", nil)
	assert.Equal(t, "v1", w.Body.String())
	assert.Empty(t, w.Header().Get("X-API-Deprecated"))

	w = serve(router, http.MethodGet, "/api/v0/ping", nil)
	assert.Equal(t, "v0", w.Body.String())
	assert.Equal(t, "true", w.Header().Get("X-API-Deprecated"))
	assert.Equal(t, "2026-01-01", w.Header().Get("X-API-Sunset-Date"))

	w = serve(router, http.MethodGet, "/api/v1/ping", map[string]string{"API-Version": "v0"})
	assert.Equal(t, "v0", w.Body.String())
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api.SetLoggerOutput(io.Discard)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperror.Validation("hours", "must be non-negative"), http.StatusBadRequest},
		{"not found", apperror.EntryNotFound(7), http.StatusNotFound},
		{"forbidden", apperror.Forbidden("self-approval is not allowed"), http.StatusForbidden},
		{"conflict", apperror.Conflict("entry is approved").WithEntry(3), http.StatusConflict},
		{"bad body", api.WrapError(errors.New("unexpected EOF"), http.StatusBadRequest, "validation").WithField("body"), http.StatusBadRequest},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", func(c *gin.Context) { api.HandleError(c, tc.err) })
			w := serve(router, http.MethodGet, "/", nil)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
		})
	}
}
