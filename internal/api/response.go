package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

type APIResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString(traceIDKey),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString(traceIDKey),
	})
}

// HandleServiceError maps store and configuration errors onto HTTP responses.
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, errx.ErrNotConfigured) {
		RespondError(c, http.StatusServiceUnavailable, err.Error())
		return
	}

	status := errx.StatusOf(err)
	var appErr *errx.AppError
	message := errx.SystemErrorMessage
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Str("trace_id", c.GetString(traceIDKey)).Msg("request failed")
	}
	RespondError(c, status, message)
}
