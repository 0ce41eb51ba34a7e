package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCSRFRouter(t *testing.T) (*gin.Engine, *Service) {
	svc, _ := setupTestService(t)

	router := gin.New()
	router.Use(CSRFMiddleware([]byte(strings.Repeat("k", 32)), false, svc))
	router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/mutate", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, svc
}

func sessionCookie() *http.Cookie {
	return &http.Cookie{Name: SessionCookieName, Value: "opaque"}
}

func TestCSRFMiddleware_SkipsRequestsWithoutSession(t *testing.T) {
	router, _ := setupCSRFRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mutate", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCSRFMiddleware_RejectsCookieWithoutToken(t *testing.T) {
	router, _ := setupCSRFRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(sessionCookie())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CSRF")
}

func TestCSRFMiddleware_SkipsValidBearer(t *testing.T) {
	router, svc := setupCSRFRouter(t)
	_, token, err := svc.Register("alice", "hunter22")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(sessionCookie())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCSRFMiddleware_SafeMethodIssuesToken(t *testing.T) {
	router, _ := setupCSRFRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	req.AddCookie(sessionCookie())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}
