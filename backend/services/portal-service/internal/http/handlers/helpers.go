package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"nmsportal/backend/libs/aimcsv"
	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/service"
	"nmsportal/backend/services/portal-service/internal/sessions"
)

// writeJSON encodes payload before the status line goes out, so an unencodable
// payload still yields a 500.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// WriteError writes a JSON error body.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// WriteServiceError maps engine and service errors onto HTTP statuses.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var cfgErr *derive.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		WriteError(w, http.StatusBadRequest, cfgErr.Error())
	case errors.Is(err, derive.ErrInsufficientData), errors.Is(err, aimcsv.ErrNoHeader):
		WriteError(w, http.StatusUnprocessableEntity, "no data")
	case errors.Is(err, sessions.ErrNotFound):
		WriteError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrTrackUnavailable):
		WriteError(w, http.StatusNotFound, "track unavailable")
	case errors.Is(err, service.ErrUnknownChannel):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrHistoryUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "history unavailable")
	default:
		logger.Error("request failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
