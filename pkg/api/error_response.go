package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adfharrison1/go-search/pkg/domain"
)

// StatusClientClosedRequest is used when the client went away before its
// request was handled
const StatusClientClosedRequest = 499

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	ErrorCode string `json:"errorCode"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:     statusText(statusCode),
		Message:   message,
		Code:      statusCode,
		ErrorCode: errorCode,
	}

	json.NewEncoder(w).Encode(response)
}

func statusText(code int) string {
	if code == StatusClientClosedRequest {
		return "Client Closed Request"
	}
	return http.StatusText(code)
}

// methodNotAllowed answers every request with 405 and the allowed methods
func methodNotAllowed(allowed ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			fmt.Sprintf("%s is not allowed on %s", r.Method, r.URL.Path))
	}
}

// statusForError maps a controller error to its HTTP status and error code
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "request_canceled"
	case errors.Is(err, domain.ErrIndexNotFound):
		return http.StatusNotFound, "index_not_found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "document_not_found"
	case errors.Is(err, domain.ErrPayload):
		return http.StatusBadRequest, "malformed_payload"
	case errors.Is(err, domain.ErrPrimaryKey):
		return http.StatusBadRequest, "primary_key"
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "backend_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeControllerError surfaces err verbatim under its mapped status
func writeControllerError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	WriteJSONError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// UpdateResponse is the body of every accepted mutation
type UpdateResponse struct {
	UpdateID uint64 `json:"updateId"`
}

func writeAccepted(w http.ResponseWriter, record *domain.UpdateRecord) {
	writeJSON(w, http.StatusAccepted, UpdateResponse{UpdateID: record.ID})
}
