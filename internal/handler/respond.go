package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yourorg/unitsphere/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain sentinels onto HTTP statuses and emits a JSON
// error body. Anything unmapped is a 500 with a generic message so
// internal detail never leaks to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateAgreement):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrAgreementClosed):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUpstream):
		status, message = http.StatusBadGateway, err.Error()
	default:
		status, message = http.StatusInternalServerError, "internal server error"
		if logger != nil {
			logger.Error("request failed", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}
