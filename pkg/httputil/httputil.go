// Package httputil centralizes JSON response envelopes so every handler
// speaks the same shape.
package httputil

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Conflict    any    `json:"conflict,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError emits the standard error envelope. Internal errors deliberately
// carry no description so backend detail never leaks to clients.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	if status >= http.StatusInternalServerError {
		description = ""
	}
	WriteJSON(w, status, errorResponse{Error: code, Description: description})
}

// WriteConflict emits a conflict envelope with a structured payload the
// caller can act on.
func WriteConflict(w http.ResponseWriter, code string, payload any) {
	WriteJSON(w, http.StatusConflict, errorResponse{Error: code, Conflict: payload})
}
