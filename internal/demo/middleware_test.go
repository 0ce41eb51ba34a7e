package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(enabled bool) *gin.Engine {
	router := gin.New()
	router.Use(NewMiddleware(enabled).Handler())
	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"demo": c.GetBool(ContextKeyDemoMode)})
	}
	router.GET("/api/trending/songs", ok)
	router.PATCH("/api/songs/:id/like", ok)
	router.POST("/api/songs/:id/comments", ok)
	router.DELETE("/api/songs/:id", ok)
	router.POST("/api/auth/login", ok)
	router.POST("/api/auth/register", ok)
	return router
}

func do(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewMiddleware(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())
}

func TestMiddleware_AllowsReads(t *testing.T) {
	w := do(setupRouter(true), http.MethodGet, "/api/trending/songs")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"demo":true}`, w.Body.String())
}

func TestMiddleware_BlocksWrites(t *testing.T) {
	router := setupRouter(true)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/api/songs/1/like"},
		{http.MethodPost, "/api/songs/1/comments"},
		{http.MethodDelete, "/api/songs/1"},
		{http.MethodPost, "/api/auth/register"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(router, tt.method, tt.path)
			require.Equal(t, http.StatusForbidden, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, true, body["demo_mode"])
			assert.Equal(t, blockedMessage, body["error"])
		})
	}
}

func TestMiddleware_AllowsLogin(t *testing.T) {
	w := do(setupRouter(true), http.MethodPost, "/api/auth/login")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_Disabled(t *testing.T) {
	router := setupRouter(false)

	w := do(router, http.MethodPatch, "/api/songs/1/like")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"demo":false}`, w.Body.String())
}
