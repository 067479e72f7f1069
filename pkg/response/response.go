package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/bondst/guitarvault/pkg/errors"
)

// ErrorBody is the JSON shape of every failed API response.
type ErrorBody struct {
	Error *appErrors.Error `json:"error"`
}

// JSON sends a bare success payload; the storefront UI consumes records directly.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error converts err to the common structure. Unclassified errors collapse to a generic 500
// and the original cause is attached to the gin context for the request logger.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, ErrorBody{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
