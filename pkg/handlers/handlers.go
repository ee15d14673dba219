// Package handlers contains the HTTP handlers for the learning platform
// API. Each handler owns a small service interface so tests can run against
// stubs.
package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends a JSON error body, matching the {"error": "..."} shape
// the web client expects.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
