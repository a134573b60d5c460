package api

import (
	"encoding/json"
	"net/http"

	"log/slog"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

// writeErrorStatus includes a machine-readable status discriminator next to
// the message (used by the claim preview endpoint).
func writeErrorStatus(w http.ResponseWriter, msg, statusWord string, status int) {
	writeJSON(w, errorResponse{Error: msg, Status: statusWord}, status)
}
