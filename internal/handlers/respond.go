package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// badRequest is a client input problem whose text is returned verbatim.
type badRequest string

func (e badRequest) Error() string { return string(e) }

const (
	errNoImage badRequest = "No image provided"
	errNoFile  badRequest = "No selected file"
)

func badRequestf(format string, args ...any) error {
	return badRequest(fmt.Sprintf(format, args...))
}

// requestStatus maps an input-reading error to its HTTP status.
func requestStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
