package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/trueframework/true-board/internal/pkg/errors"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignore encoding errors, headers already sent
	_ = json.NewEncoder(w).Encode(v)
}

// writeMethodNotAllowed rejects unsupported methods on a known route.
func writeMethodNotAllowed(w http.ResponseWriter) {
	apperrors.WriteErrorWithStatus(w, http.StatusMethodNotAllowed,
		apperrors.InvalidRequestError("method not allowed"))
}
