package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeValidation, "invalid input"),
			want: "VALIDATION_ERROR: invalid input",
		},
		{
			name: "with wrapped error",
			err:  Wrap(CodeInternal, "something failed", errors.New("underlying")),
			want: "INTERNAL_ERROR: something failed: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeInternal, "wrapped", underlying)

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlying)
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{CodeRemoteError, http.StatusInternalServerError},
		{CodeSeedError, http.StatusInternalServerError},
		{CodeSyncError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test")
			if got := err.HTTPStatus(); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := New(CodeValidation, "invalid").WithDetail("field", "modelName")

	if err.Details["field"] != "modelName" {
		t.Errorf("WithDetail() did not set detail, got %v", err.Details)
	}

	err = err.WithDetail("reason", "empty")
	if len(err.Details) != 2 {
		t.Errorf("expected 2 details, got %d", len(err.Details))
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"validation", ValidationError("bad"), CodeValidation},
		{"not found", NotFoundError("evaluation"), CodeNotFound},
		{"already exists", AlreadyExistsError("evaluation"), CodeAlreadyExists},
		{"internal", InternalError("oops", nil), CodeInternal},
		{"remote", RemoteError("down", errors.New("conn refused")), CodeRemoteError},
		{"seed", SeedError("fetch failed", nil), CodeSeedError},
		{"sync", SyncError("merge failed", nil), CodeSyncError},
		{"invalid request", InvalidRequestError("bad json"), CodeInvalidRequest},
		{"timeout", TimeoutError("remote load"), CodeTimeout},
		{"unavailable", ServiceUnavailableError("remote store"), CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("got code %s, want %s", tt.err.Code, tt.code)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFoundError("x")) {
		t.Error("IsNotFound() should be true for NotFoundError")
	}
	if IsNotFound(ValidationError("x")) {
		t.Error("IsNotFound() should be false for ValidationError")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound() should be false for plain errors")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ValidationError("x")) {
		t.Error("IsValidation() should be true for ValidationError")
	}
	if IsValidation(NotFoundError("x")) {
		t.Error("IsValidation() should be false for NotFoundError")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NotFoundError("evaluation"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Code != CodeNotFound {
		t.Errorf("code = %s, want %s", resp.Code, CodeNotFound)
	}

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "connection reset") {
		t.Errorf("internal detail leaked to client: %s", body)
	}
}

func TestWriteErrorWithStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorWithStatus(rec, http.StatusMethodNotAllowed, errors.New("method not allowed"))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Message != "method not allowed" {
		t.Errorf("4xx message should reach the client, got %q", resp.Message)
	}

	rec = httptest.NewRecorder()
	WriteErrorWithStatus(rec, http.StatusBadGateway, errors.New("dial tcp: refused"))
	if body := rec.Body.String(); strings.Contains(body, "dial tcp") {
		t.Errorf("5xx detail leaked to client: %s", body)
	}
}
