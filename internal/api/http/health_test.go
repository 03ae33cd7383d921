package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func getHealth(t *testing.T, r *gin.Engine, path string) (int, HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

var (
	up   = PingFunc(func(context.Context) error { return nil })
	down = PingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestHealthCheck(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		h := NewHealthHandler("ambi360", "1.2.3", up)
		h.AddCheck("redis", up)

		code, resp := getHealth(t, healthRouter(h), "/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "up", resp.DB)
		assert.Equal(t, "up", resp.Checks["redis"])
		assert.Equal(t, "1.2.3", resp.Version)
	})

	t.Run("database down", func(t *testing.T) {
		code, resp := getHealth(t, healthRouter(NewHealthHandler("ambi360", "1", down)), "/health")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "down", resp.DB)
	})

	t.Run("optional check down", func(t *testing.T) {
		h := NewHealthHandler("ambi360", "1", up)
		h.AddCheck("redis", down)

		code, resp := getHealth(t, healthRouter(h), "/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", resp.Status)
	})

	t.Run("no database", func(t *testing.T) {
		code, resp := getHealth(t, healthRouter(NewHealthHandler("ambi360", "1", nil)), "/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "disabled", resp.DB)
	})
}

func TestHealthzAlias(t *testing.T) {
	code, resp := getHealth(t, healthRouter(NewHealthHandler("ambi360", "1", up)), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", resp.DB)
}
