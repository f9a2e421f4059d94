package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/sessions"
)

func TestWriteJSONUnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"max_power_kw": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal error") {
		t.Fatalf("expected error body, got %q", rec.Body.String())
	}
}

func TestWriteServiceErrorStatuses(t *testing.T) {
	_, unitsErr := derive.ParseUnitSystem("furlongs")
	cases := []struct {
		err    error
		status int
	}{
		{unitsErr, http.StatusBadRequest},
		{fmt.Errorf("load: %w", sessions.ErrNotFound), http.StatusNotFound},
		{&derive.InsufficientDataError{Channel: derive.ChannelTime, Reason: "channel not found"}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteServiceError(rec, zap.NewNop(), tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
	}
}
