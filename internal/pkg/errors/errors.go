// Package errors provides the application error type and HTTP error
// responses.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	// Client errors (4xx).
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyExists  = "ALREADY_EXISTS"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInvalidRequest = "INVALID_REQUEST"

	// Server errors (5xx).
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeTimeout     = "TIMEOUT"
	CodeRemoteError = "REMOTE_STORE_ERROR"
	CodeSeedError   = "SEED_ERROR"
	CodeSyncError   = "SYNC_ERROR"
)

// statusByCode maps error codes to HTTP status codes. Codes not listed
// map to 500.
var statusByCode = map[string]int{
	CodeValidation:     http.StatusBadRequest,
	CodeInvalidRequest: http.StatusBadRequest,
	CodeNotFound:       http.StatusNotFound,
	CodeAlreadyExists:  http.StatusConflict,
	CodeRateLimited:    http.StatusTooManyRequests,
	CodeUnavailable:    http.StatusServiceUnavailable,
	CodeTimeout:        http.StatusGatewayTimeout,
}

// AppError carries an error code, a client-safe message and optional
// structured details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error's code.
func (e *AppError) HTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New creates an AppError.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError around an underlying error.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithDetails replaces the error's detail map.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds one detail entry.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

func NotFoundError(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExistsError(resource string) *AppError {
	return New(CodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func InvalidRequestError(message string) *AppError {
	return New(CodeInvalidRequest, message)
}

func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// RemoteError marks a failure talking to the shared remote store.
func RemoteError(message string, err error) *AppError {
	return Wrap(CodeRemoteError, message, err)
}

// SeedError marks a failure in a seeding pass.
func SeedError(message string, err error) *AppError {
	return Wrap(CodeSeedError, message, err)
}

// SyncError marks a failed remote reconciliation.
func SyncError(message string, err error) *AppError {
	return Wrap(CodeSyncError, message, err)
}

// RateLimitedError carries a retry hint in seconds.
func RateLimitedError(retryAfterSeconds int) *AppError {
	err := New(CodeRateLimited, "rate limit exceeded")
	if retryAfterSeconds > 0 {
		err = err.WithDetail("retry_after", fmt.Sprintf("%d", retryAfterSeconds))
	}
	return err
}

func TimeoutError(operation string) *AppError {
	if operation == "" {
		return New(CodeTimeout, "operation timed out")
	}
	return New(CodeTimeout, fmt.Sprintf("%s timed out", operation))
}

func ServiceUnavailableError(service string) *AppError {
	if service == "" {
		return New(CodeUnavailable, "service unavailable")
	}
	return New(CodeUnavailable, fmt.Sprintf("%s is unavailable", service))
}

// hasCode reports whether any error in the chain is an AppError with
// the given code.
func hasCode(err error, code string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// ErrorResponse is the JSON error body the API serves.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes an error response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, nothing to do about encode failures.
	_ = json.NewEncoder(w).Encode(resp)
}

func appErrorResponse(e *AppError) ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// WriteError writes err as a JSON response. AppErrors choose their own
// status; anything else becomes a sanitized 500 so internal details
// never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		WriteJSON(w, appErr.HTTPStatus(), appErrorResponse(appErr))
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal server error",
		Code:    CodeInternal,
		Message: "An unexpected error occurred",
	})
}

// WriteErrorWithStatus writes err with a caller-chosen status. 4xx
// messages reach the client; 5xx messages are sanitized.
func WriteErrorWithStatus(w http.ResponseWriter, status int, err error) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		WriteJSON(w, status, appErrorResponse(appErr))
		return
	}

	if status >= 400 && status < 500 {
		WriteJSON(w, status, ErrorResponse{
			Error:   err.Error(),
			Code:    codeForStatus(status),
			Message: err.Error(),
		})
		return
	}

	WriteJSON(w, status, ErrorResponse{
		Error:   "internal server error",
		Code:    CodeInternal,
		Message: "An unexpected error occurred",
	})
}

// codeForStatus picks an error code for a bare HTTP status.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	case http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeInternal
	}
}
