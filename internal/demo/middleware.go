// Package demo puts the API into a read-only showcase mode.
//
// With demo mode on, listings and profile reads keep working, while every
// engagement, upload and membership change is refused with 403 so a public
// instance keeps its seeded counters intact.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyDemoMode is set on every request so handlers can report the mode.
const ContextKeyDemoMode = "demo_mode"

const blockedMessage = "This action is disabled in demo mode"

// Paths that stay writable so visitors can still log in and out.
var allowedPrefixes = []string{
	"/api/auth/login",
	"/api/auth/logout",
}

// Middleware blocks write operations in demo mode.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that refuses non-read requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)

		if !m.enabled || isReadOnly(c.Request.Method) || isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     blockedMessage,
			"demo_mode": true,
		})
	}
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isAllowedPath(path string) bool {
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
