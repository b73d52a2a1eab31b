package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"relgraph/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret-key", Issuer: "relgraph"})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService()
	token, err := s.GenerateToken(42, map[string]interface{}{"username": "alice"})
	require.NoError(t, err)

	id, err := s.UserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = s.GenerateToken(0, nil)
	assert.Error(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", Issuer: "relgraph"})
	_, err = other.UserIDFromToken(token)
	assert.Error(t, err, "signature from a different key is rejected")

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret-key", Issuer: "someone-else"})
	_, err = wrongIssuer.UserIDFromToken(token)
	assert.Error(t, err)
}

func TestOptionalAndRequiredAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService()
	token, err := s.GenerateToken(7, nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/optional", s.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUserID(c)})
	})
	r.GET("/required", s.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUserID(c)})
	})

	do := func(path, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":0}`, w.Body.String())

	w = do("/optional", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":7}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do("/optional", "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/optional", "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, do("/required", "").Code)
	assert.Equal(t, http.StatusOK, do("/required", "Bearer "+token).Code)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService()
	user, err := s.GenerateToken(1, nil)
	require.NoError(t, err)
	admin, err := s.GenerateToken(2, map[string]interface{}{"role": RoleAdmin})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", s.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusForbidden, do(user))
	assert.Equal(t, http.StatusNoContent, do(admin))
}
