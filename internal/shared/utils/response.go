package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	"github.com/orris-inc/poolkeeper/internal/shared/errors"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func success(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, APIResponse{Success: true, Data: data, Message: message})
}

func failure(c *gin.Context, status int, info ErrorInfo) {
	c.JSON(status, APIResponse{Success: false, Error: &info})
}

func OKResponse(c *gin.Context, data interface{}) {
	success(c, http.StatusOK, data, "")
}

// AcceptedResponse answers requests whose work continues in a job.
func AcceptedResponse(c *gin.Context, data interface{}, message string) {
	success(c, http.StatusAccepted, data, message)
}

func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	msg := "Resource created successfully"
	if len(message) > 0 {
		msg = message[0]
	}
	success(c, http.StatusCreated, data, msg)
}

// ErrorResponse writes a bare error; prefer ErrorResponseWithError for errors
// coming out of use cases.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	failure(c, statusCode, ErrorInfo{Type: "error", Message: message})
}

// ErrorResponseWithError renders an AppError with its own status. Details of
// any other error are never exposed.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		failure(c, http.StatusInternalServerError, ErrorInfo{
			Type:    string(errors.ErrorTypeInternal),
			Message: constants.ErrMsgInternalServerError,
		})
		return
	}
	failure(c, appErr.Code, ErrorInfo{
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
