package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	errorJSON(c, http.StatusBadRequest, "bad_request", message)
}

// BadRequestCode sends a 400 error response with a machine-readable code.
func BadRequestCode(c *gin.Context, code, message string) {
	errorJSON(c, http.StatusBadRequest, code, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	errorJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context) {
	errorJSON(c, http.StatusForbidden, "forbidden", "not allowed")
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	errorJSON(c, http.StatusNotFound, "not_found", "not found")
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	errorJSON(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	errorJSON(c, http.StatusConflict, "conflict", message)
}

// InternalError sends a 500 error response with a generic message.
// The underlying error is never surfaced to the caller; log it server-side.
func InternalError(c *gin.Context) {
	errorJSON(c, http.StatusInternalServerError, "internal_error", "an internal error occurred")
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": code, "message": message})
}
