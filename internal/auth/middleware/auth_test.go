package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/config"
	"github.com/ambi360/ambi360-backend/internal/auth"
)

func setup(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokenManager(&config.SecurityConfig{JWTSecret: "s", JWTExpiration: time.Hour})
	require.NoError(t, err)

	r := gin.New()
	who := func(c *gin.Context) { c.String(http.StatusOK, auth.UserID(c)) }
	r.GET("/private", RequireAuth(tokens), who)
	r.GET("/admin", RequireAuth(tokens), RequireAdmin(), who)
	r.GET("/optional", OptionalAuth(tokens), who)
	return r, tokens
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, tokens := setup(t)
	token, _, err := tokens.GenerateToken("u-1", "alice", auth.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", token).Code, "scheme is required")

	w := do(r, "/private", "bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	r, tokens := setup(t)
	userToken, _, err := tokens.GenerateToken("u-1", "alice", auth.RoleUser)
	require.NoError(t, err)
	adminToken, _, err := tokens.GenerateToken("u-2", "root", auth.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", "Bearer "+adminToken).Code)
}

func TestOptionalAuth(t *testing.T) {
	r, tokens := setup(t)
	token, _, err := tokens.GenerateToken("u-1", "alice", auth.RoleUser)
	require.NoError(t, err)

	w := do(r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/optional", "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/optional", "Bearer "+token)
	assert.Equal(t, "u-1", w.Body.String())
}
