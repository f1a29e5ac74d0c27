// Package readonly blocks every request that would change the library.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey stores the read-only flag for template rendering.
const ContextKey = "read_only"

const blockedMessage = "The library is in read-only mode"

// legacyMutationPrefixes are GET routes that still change data.
var legacyMutationPrefixes = []string{
	"/remove/",
	"/status/",
}

// Middleware rejects write operations when enabled.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a read-only middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m != nil && m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, m.IsEnabled())

		if !m.IsEnabled() || m.isAllowed(c.Request) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

func (m *Middleware) isAllowed(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		for _, prefix := range legacyMutationPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return false
			}
		}
		return true
	case http.MethodOptions:
		return true
	default:
		return false
	}
}

// respondBlocked sends a 403 as JSON or plain text depending on Accept.
func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     blockedMessage,
			"read_only": true,
		})
		return
	}

	c.String(http.StatusForbidden, blockedMessage)
	c.Abort()
}
