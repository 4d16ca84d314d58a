package server

import (
	"encoding/json"
	"net/http"

	svcErr "github.com/avelin/pairwise/internal/errors"
	"github.com/avelin/pairwise/internal/logger"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Error("failed to encode response", "err", err)
	}
}

// WriteError maps err to an HTTP status via the central mapper and
// writes a {"detail": ...} body, logging server-side faults.
func WriteError(w http.ResponseWriter, err error) {
	status, msg := svcErr.Map(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed", "err", err)
	}
	WriteJSON(w, status, map[string]string{"detail": msg})
}

// WriteBadRequest writes a 400 with the given message.
func WriteBadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": msg})
}
