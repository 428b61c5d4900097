package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope of every non-2xx reply.
type ErrorResponse struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
}

func Error(ctx *gin.Context, status int, message string, err interface{}) ErrorResponse {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return ErrorResponse{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(ctx *gin.Context, status int, message string, err interface{}) {
	resp := Error(ctx, status, message, err)
	ctx.AbortWithStatusJSON(resp.Status, resp)
}

// JSON writes a bare success body.
func JSON(ctx *gin.Context, status int, body any) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, body)
}
