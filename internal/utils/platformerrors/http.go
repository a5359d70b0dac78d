package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTTPError is the wire shape of every error response the server writes.
// Error names the operation that failed, Message carries the detail.
type HTTPError struct {
	Code      string `json:"code,omitempty"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError maps err onto an HTTP response and aborts the request.
// A PlatformError selects its status via ErrorTypeToHTTPStatus and keeps its
// code and request ID on the wire; any other error becomes a 500.
func WriteError(c *gin.Context, err error, message string) {
	if platformErr := GetPlatformError(err); platformErr != nil {
		c.AbortWithStatusJSON(ErrorTypeToHTTPStatus(platformErr.Type), HTTPError{
			Code:      platformErr.UUID,
			Error:     message,
			Message:   platformErr.Message,
			RequestID: platformErr.RequestID,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPError{
		Error:   message,
		Message: message,
	})
}

// WriteUnauthorized rejects the request with a 401 and aborts it.
func WriteUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, HTTPError{
		Error:   "unauthorized",
		Message: message,
	})
}
