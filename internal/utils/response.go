package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/apperrors"
	"reviewhub/pkg/logger"
)

type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendAppError maps a service error onto the response envelope using the
// error taxonomy. Internal faults never leak their cause to the caller.
func SendAppError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	response := APIResponse{
		Success: false,
		Message: err.Error(),
		Errors:  apperrors.FieldsOf(err),
	}
	if status == http.StatusInternalServerError {
		logger.WithFields(map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error(err)
		response.Message = "internal server error"
	}

	c.JSON(status, response)
}

func SendValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Message: message,
	})
}

func SendUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, APIResponse{
		Success: false,
		Message: message,
	})
}

func SendForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, APIResponse{
		Success: false,
		Message: message,
	})
}
