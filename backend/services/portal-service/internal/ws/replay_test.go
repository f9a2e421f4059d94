package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/sessions"
)

func testSession(t *testing.T, units derive.UnitSystem) *derive.Session {
	t.Helper()
	raw, err := derive.NewTable(
		[]string{"Time", "GPS Speed", "RPM"},
		[][]float64{{0, 0.01, 0.02}, {10, derive.Missing, 30}, {1000, 2000, 3000}},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	session, err := derive.Build(raw, units)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return session
}

func newReplayServer(t *testing.T) *httptest.Server {
	t.Helper()
	deriver := DeriverFunc(func(ctx context.Context, name string, units derive.UnitSystem) (*derive.Session, error) {
		switch name {
		case "run.csv":
		case "empty.csv":
			return nil, &derive.InsufficientDataError{Channel: derive.ChannelTime, Reason: "channel not found"}
		default:
			return nil, fmt.Errorf("load %s: %w", name, sessions.ErrNotFound)
		}
		return testSession(t, units), nil
	})
	r := mux.NewRouter()
	r.Handle("/replay/{name}", NewReplayHandler(deriver, derive.Imperial, time.Second, 50*time.Millisecond, zap.NewNop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestReplayStreamsRows(t *testing.T) {
	srv := newReplayServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/replay/run.csv?units=metric&rate=10"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for i := 0; i < 3; i++ {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read row %d: %v", i, err)
		}
		if msg.Type != "row" || msg.Index != i {
			t.Fatalf("expected row %d, got %+v", i, msg)
		}
		speed := msg.Row["DisplaySpeed"]
		if i == 1 {
			if speed != nil {
				t.Fatalf("expected missing speed as null, got %v", *speed)
			}
			continue
		}
		if speed == nil {
			t.Fatalf("row %d: expected DisplaySpeed", i)
		}
	}

	var done Message
	if err := conn.ReadJSON(&done); err != nil {
		t.Fatalf("read done: %v", err)
	}
	if done.Type != "done" || done.Rows != 3 {
		t.Fatalf("expected done after 3 rows, got %+v", done)
	}

	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestReplayRejectsBeforeUpgrade(t *testing.T) {
	srv := newReplayServer(t)

	cases := []struct {
		path   string
		status int
	}{
		{"/replay/run.csv?units=furlongs", http.StatusBadRequest},
		{"/replay/run.csv?rate=0", http.StatusBadRequest},
		{"/replay/run.csv?rate=fast", http.StatusBadRequest},
		{"/replay/other.csv", http.StatusNotFound},
		{"/replay/empty.csv", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tc.path), nil)
		if err == nil {
			t.Fatalf("%s: expected handshake failure", tc.path)
		}
		if resp == nil || resp.StatusCode != tc.status {
			t.Fatalf("%s: expected status %d, got %v", tc.path, tc.status, resp)
		}
	}
}

func TestGapIsCapped(t *testing.T) {
	h := NewReplayHandler(nil, derive.Metric, 0, 200*time.Millisecond, zap.NewNop())

	cases := []struct {
		dt   float64
		rate float64
		want time.Duration
	}{
		{0, 1, 0},
		{-1, 1, 0},
		{derive.Missing, 1, 0},
		{0.1, 1, 100 * time.Millisecond},
		{0.1, 2, 50 * time.Millisecond},
		{5, 1, 200 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := h.gap(tc.dt, tc.rate); got != tc.want {
			t.Fatalf("gap(%v, %v): expected %v, got %v", tc.dt, tc.rate, tc.want, got)
		}
	}
}
