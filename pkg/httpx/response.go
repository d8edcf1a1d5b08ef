package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code. Token
// responses must never be cached, so every JSON response carries
// no-store headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Error is a stable machine-readable rejection, shared by both services.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// WriteError writes the rejection as a JSON response.
func (e *Error) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, e)
}
