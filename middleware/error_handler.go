package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorHandler renders the last error attached to the gin context. AppErrors
// keep their type and status; bind errors become VALIDATION_ERROR; anything
// else is a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			status := appErr.GetHTTPStatus()
			logger.LogHTTPError(c, err, status, fmt.Sprintf("%s error", appErr.Type))

			resp := newErrorResponse(c, string(appErr.Type), appErr.Message, status)
			if appErr.Detail != "" && (gin.IsDebugging() ||
				appErr.Type == apperrors.ValidationError ||
				appErr.Type == apperrors.NotFoundError) {
				resp.Details = appErr.Detail
			}
			c.JSON(status, resp)

		case last.Type == gin.ErrorTypeBind:
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			resp := newErrorResponse(c, string(apperrors.ValidationError), "Failed to bind request", http.StatusBadRequest)
			if gin.IsDebugging() {
				resp.Details = err.Error()
			}
			c.JSON(http.StatusBadRequest, resp)

		default:
			logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
			resp := newErrorResponse(c, string(apperrors.ServerError), "Internal Server Error", http.StatusInternalServerError)
			if gin.IsDebugging() {
				resp.Details = err.Error()
			}
			c.JSON(http.StatusInternalServerError, resp)
		}
	}
}

func newErrorResponse(c *gin.Context, errType, message string, status int) ErrorResponse {
	return ErrorResponse{
		Type:      errType,
		Message:   message,
		Code:      strconv.Itoa(status),
		RequestID: c.GetString(RequestIDKey),
	}
}
