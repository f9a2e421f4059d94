package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"nmsportal/backend/libs/aimcsv"
	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/service"
)

const defaultHistoryLimit = 20

// SessionsHandlers serves derived session data.
type SessionsHandlers struct {
	service      *service.PortalService
	defaultUnits derive.UnitSystem
	logger       *zap.Logger
}

// NewSessionsHandlers builds handler set.
func NewSessionsHandlers(svc *service.PortalService, defaultUnits derive.UnitSystem, logger *zap.Logger) *SessionsHandlers {
	return &SessionsHandlers{
		service:      svc,
		defaultUnits: defaultUnits,
		logger:       logger,
	}
}

// List handles GET /api/sessions.
func (h *SessionsHandlers) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListSessions()
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": files})
}

// Summary handles GET /api/sessions/{name}/summary.
func (h *SessionsHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	units, ok := h.units(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), mux.Vars(r)["name"], units)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Table handles GET /api/sessions/{name}/table.
func (h *SessionsHandlers) Table(w http.ResponseWriter, r *http.Request) {
	units, ok := h.units(w, r)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format != "" && format != "json" && format != "csv" {
		WriteError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	name := mux.Vars(r)["name"]
	table, err := h.service.Table(r.Context(), name, units, splitList(r.URL.Query().Get("channels")))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "derived-"+name))
		w.WriteHeader(http.StatusOK)
		if err := aimcsv.Write(w, table); err != nil {
			h.logger.Warn("failed to stream csv", zap.String("file", name), zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Track handles GET /api/sessions/{name}/track.
func (h *SessionsHandlers) Track(w http.ResponseWriter, r *http.Request) {
	track, err := h.service.Track(r.Context(), mux.Vars(r)["name"], h.defaultUnits)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// Rederive handles POST /api/sessions/rederive.
func (h *SessionsHandlers) Rederive(w http.ResponseWriter, r *http.Request) {
	units, ok := h.units(w, r)
	if !ok {
		return
	}
	results, err := h.service.Rederive(r.Context(), units)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// History handles GET /api/sessions/{name}/history.
func (h *SessionsHandlers) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	history, err := h.service.History(r.Context(), mux.Vars(r)["name"], limit)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (h *SessionsHandlers) units(w http.ResponseWriter, r *http.Request) (derive.UnitSystem, bool) {
	raw := r.URL.Query().Get("units")
	if raw == "" {
		return h.defaultUnits, true
	}
	units, err := derive.ParseUnitSystem(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return units, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
