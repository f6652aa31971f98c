package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the wire shape shared by every error path: the panic
// recovery below, JSONError, and the handlers' domain error mapping.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler recovers panics and answers with the same JSON shape the
// handlers use, with the detail withheld from the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				GetLogger().Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "internal error",
				})
			}
		}()
		c.Next()
	}
}

// JSONError writes one domain error response and logs it with the request path.
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message,
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("details", details),
	)
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}
