package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-ecommerce/internal/application"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/response"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/validation"
)

func statusFor(k application.Kind) int {
	switch k {
	case application.KindConflict:
		return http.StatusConflict
	case application.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case application.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders an application error. Causes are never exposed to clients.
func writeServiceError(c *gin.Context, err error) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		response.AbortWithError(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.AbortWithError(c, statusFor(appErr.Kind), appErr.Message, nil)
}

func writeBindError(c *gin.Context, err error) {
	response.AbortWithError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
