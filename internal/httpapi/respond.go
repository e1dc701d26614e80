package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

type errorResponse struct {
	Success bool          `json:"success"`
	Error   responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successResponse{Success: true, Message: message, Data: data})
}

// writeList is writeSuccess plus a count field for collection endpoints.
func writeList(w http.ResponseWriter, status int, message string, data any, count int) {
	writeJSON(w, status, successResponse{Success: true, Message: message, Data: data, Count: &count})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

// writeDenial is the failure translator: a typed guard denial rendered with
// its fixed status and code. Internal error text never reaches the body.
func writeDenial(w http.ResponseWriter, _ *http.Request, d *auth.Denial) {
	writeError(w, d.Kind.HTTPStatus(), d.Kind.Code(), d.Message)
}

// decodeJSON parses the request body into dst, rejecting unknown fields.
// Writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}
