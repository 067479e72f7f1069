package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the context key under which the caller id is stored.
const ContextUserKey = "userID"

// Identity copies the caller id from a trusted upstream header. With an empty header
// name every request is anonymous.
func Identity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header != "" {
			if id := strings.TrimSpace(c.GetHeader(header)); id != "" {
				c.Set(ContextUserKey, id)
			}
		}
		c.Next()
	}
}

// UserID returns the caller id set by Identity, or "" for anonymous callers.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
