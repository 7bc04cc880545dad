package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/dealspot/internal/core/domain"
)

const usernameHeader = "X-Username"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", "writeJSON", "err", err)
	}
}

// writeError maps service errors to statuses. Anything unknown is
// reported as an unavailable dependency.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownSection),
		errors.Is(err, domain.ErrUnknownSpot):
		log.Warn("not found", "err", err)
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Actions: []string{actionGoHome},
		})
	case errors.Is(err, domain.ErrNoUsername):
		log.Warn("bad request", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "the " + usernameHeader + " header is required",
		})
	case errors.Is(err, domain.ErrNoProductID):
		writeBadRequest(w, log, domain.ErrNoProductID.Error(), err)
	case errors.Is(err, context.Canceled):
		log.Info("request canceled")
	default:
		log.Error("request failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "check back in a moment",
			Actions: []string{actionRetry, actionGoHome},
		})
	}
}

func writeBadRequest(w http.ResponseWriter, log *slog.Logger, msg string, err error) {
	log.Warn(msg, "err", err)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func username(r *http.Request) string {
	return r.Header.Get(usernameHeader)
}
