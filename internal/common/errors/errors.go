// Package errors provides the structured error type returned by the chat API
// and the mapping from error codes to HTTP status codes.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMessageRequired    ErrorCode = "MESSAGE_REQUIRED"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeInvalidQuery       ErrorCode = "INVALID_QUERY"

	ErrCodeDelegateKeyMissing     ErrorCode = "DELEGATE_KEY_MISSING"
	ErrCodeDelegateUpstreamFailed ErrorCode = "DELEGATE_UPSTREAM_FAILED"
	ErrCodeDelegateRequestFailed  ErrorCode = "DELEGATE_REQUEST_FAILED"

	ErrCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"

	ErrCodeRouteNotFound    ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Message and
// Details are written to clients; Metadata is only logged.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Status    int                    `json:"-"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMessageRequiredError is returned when /chat receives no usable message.
func NewMessageRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageRequired,
		Message:   "Message is required",
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestBodyError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Invalid request body",
		Status:    http.StatusBadRequest,
		Metadata:  map[string]interface{}{"cause": err.Error()},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidQueryError(param, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuery,
		Message:   "Invalid query parameter",
		Details:   fmt.Sprintf("%s: %s", param, value),
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

// NewDelegateKeyMissingError is a configuration error surfaced per request.
func NewDelegateKeyMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeDelegateKeyMissing,
		Message:   "Gemini API key missing. Add GEMINI_API_KEY in .env file.",
		Status:    http.StatusInternalServerError,
		Timestamp: time.Now().UTC(),
	}
}

// NewDelegateUpstreamError carries the upstream status and raw body back to the caller.
func NewDelegateUpstreamError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDelegateUpstreamFailed,
		Message:   fmt.Sprintf("Gemini API error (status %d)", status),
		Details:   body,
		Status:    http.StatusBadGateway,
		Retryable: status == http.StatusTooManyRequests || status >= 500,
		Metadata:  map[string]interface{}{"upstreamStatus": status},
		Timestamp: time.Now().UTC(),
	}
}

func NewDelegateRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDelegateRequestFailed,
		Message:   "Failed to reach Gemini API",
		Status:    http.StatusInternalServerError,
		Retryable: true,
		Metadata:  map[string]interface{}{"cause": err.Error()},
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogLoadFailedError is logged at startup; the server keeps running with an empty catalog.
func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Product catalog could not be loaded",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Status:    http.StatusInternalServerError,
		Timestamp: time.Now().UTC(),
	}
}

func NewRouteError(status int, message string) *StandardError {
	code := ErrCodeInternal
	switch status {
	case http.StatusNotFound:
		code = ErrCodeRouteNotFound
	case http.StatusMethodNotAllowed:
		code = ErrCodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge, http.StatusBadRequest, http.StatusUnsupportedMediaType:
		code = ErrCodeInvalidRequestBody
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Status:    http.StatusInternalServerError,
		Metadata:  map[string]interface{}{"cause": err.Error()},
		Timestamp: time.Now().UTC(),
	}
}

// GetHTTPStatus falls back to the code's conventional status when Status is unset.
func GetHTTPStatus(e *StandardError) int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code {
	case ErrCodeMessageRequired, ErrCodeInvalidRequestBody, ErrCodeInvalidQuery:
		return http.StatusBadRequest
	case ErrCodeRouteNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeDelegateUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DELEGATE"):
		return "DELEGATE"
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "REQUIRED") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "ROUTE") || strings.HasPrefix(codeStr, "METHOD"):
		return "ROUTING"
	default:
		return "OTHER"
	}
}
