// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var httpErr *echo.HTTPError
	if stderrors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		return NewRouteError(httpErr.Code, message)
	}

	return NewInternalError(err)
}

// ToResponse renders the client-visible part of a StandardError. Details that
// hold a valid JSON document are embedded as JSON rather than as a string.
func ToResponse(stdErr *StandardError) ErrorResponse {
	resp := ErrorResponse{Error: stdErr.Message}
	if stdErr.Details == "" {
		return resp
	}
	if json.Valid([]byte(stdErr.Details)) {
		resp.Details = json.RawMessage(stdErr.Details)
	} else {
		resp.Details = stdErr.Details
	}
	return resp
}

// NewHTTPErrorHandler returns an echo error handler that writes ErrorResponse bodies.
func NewHTTPErrorHandler(logger Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		stdErr := Normalize(err)
		status := GetHTTPStatus(stdErr)

		fields := map[string]interface{}{
			"method":        c.Request().Method,
			"path":          c.Path(),
			"status":        status,
			"errorCode":     string(stdErr.Code),
			"errorCategory": GetErrorCategory(stdErr.Code),
			"retryable":     stdErr.Retryable,
		}
		for k, v := range stdErr.Metadata {
			fields[k] = v
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields)
		} else {
			logger.Warn("request rejected", fields)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ToResponse(stdErr))
		}
		if writeErr != nil {
			logger.Error("failed to write error response", map[string]interface{}{
				"error": fmt.Sprintf("%v", writeErr),
			})
		}
	}
}
