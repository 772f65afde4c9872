// Package respond writes the JSON envelopes shared by every API handler.
package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is a standard API response wrapper.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Data: data}); err != nil {
		zap.L().Warn("json encode error", zap.Error(err))
	}
}

// JSONError writes a JSON error response.
func JSONError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	if encErr := json.NewEncoder(w).Encode(Response{Error: err}); encErr != nil {
		zap.L().Warn("json encode error", zap.Error(encErr))
	}
}

// Err maps err with FromError and writes it.
func Err(w http.ResponseWriter, err error) {
	JSONError(w, FromError(err))
}

// OK writes a 200 OK response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
