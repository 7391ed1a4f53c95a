package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/storedeck/storedeck/internal/store"
)

const maxBodySize = 1 << 20 // 1MB

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(v)
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// httpError writes the error body consumed by the admin UI: a single
// "error" field whose message is shown verbatim.
func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	respondJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// storeError maps store failures onto status codes. Anything that is not
// a not-found or missing-tenant case is a generic 500.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrNoTenant):
		httpError(w, http.StatusBadRequest, "missing tenant")
	default:
		httpError(w, http.StatusInternalServerError, "internal server error")
	}
}
