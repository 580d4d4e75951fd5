package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx REST response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewErrorResponse(status int, message string) ErrorResponse {
	return ErrorResponse{Error: http.StatusText(status), Message: message}
}

// JSONError writes an ErrorResponse and aborts the handler chain, so it is
// safe to use from middleware as well as from handlers.
func JSONError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(status, message))
}
