package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bondst/guitarvault/internal/middleware"
)

// callerID returns the identity attached by the trusted-header middleware; "" is anonymous.
func callerID(c *gin.Context) string {
	return middleware.UserID(c)
}
