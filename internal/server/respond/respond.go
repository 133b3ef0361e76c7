// Package respond provides shared JSON response helpers for API handlers.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error envelope.
func Error(w http.ResponseWriter, status int, message string, details ...string) {
	body := map[string]any{
		"success": false,
		"error":   message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	JSON(w, status, body)
}

// Decode parses the request body as JSON into v. On failure it writes a
// 400 response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return false
	}
	return true
}

// Health writes a standard health payload for a service.
func Health(w http.ResponseWriter, service string, extra map[string]any) {
	body := map[string]any{
		"status":  "healthy",
		"service": service,
	}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}
