package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/http/handlers"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxRate      = 100.0
)

// Deriver builds a derived session by file name.
type Deriver interface {
	Derive(ctx context.Context, name string, units derive.UnitSystem) (*derive.Session, error)
}

// DeriverFunc adapts a function to Deriver.
type DeriverFunc func(ctx context.Context, name string, units derive.UnitSystem) (*derive.Session, error)

// Derive calls f.
func (f DeriverFunc) Derive(ctx context.Context, name string, units derive.UnitSystem) (*derive.Session, error) {
	return f(ctx, name, units)
}

// Message is one frame of a replay stream.
type Message struct {
	Type  string              `json:"type"`
	Index int                 `json:"index"`
	Rows  int                 `json:"rows,omitempty"`
	Row   map[string]*float64 `json:"row,omitempty"`
}

// ReplayHandler streams a derived session row by row over a websocket, paced by
// the recorded time deltas.
type ReplayHandler struct {
	deriver      Deriver
	defaultUnits derive.UnitSystem
	writeTimeout time.Duration
	maxGap       time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewReplayHandler builds replay handler. maxGap caps the wait between two rows.
func NewReplayHandler(deriver Deriver, defaultUnits derive.UnitSystem, writeTimeout, maxGap time.Duration, logger *zap.Logger) *ReplayHandler {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if maxGap <= 0 {
		maxGap = time.Second
	}
	return &ReplayHandler{
		deriver:      deriver,
		defaultUnits: defaultUnits,
		writeTimeout: writeTimeout,
		maxGap:       maxGap,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP handles GET /api/sessions/{name}/replay.
// The session is derived before the upgrade so failures get the same statuses as the
// other session endpoints.
func (h *ReplayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	units := h.defaultUnits
	if raw := r.URL.Query().Get("units"); raw != "" {
		parsed, err := derive.ParseUnitSystem(raw)
		if err != nil {
			handlers.WriteServiceError(w, h.logger, err)
			return
		}
		units = parsed
	}
	rate := 1.0
	if raw := r.URL.Query().Get("rate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > maxRate {
			handlers.WriteError(w, http.StatusBadRequest, "rate must be in (0, 100]")
			return
		}
		rate = parsed
	}

	session, err := h.deriver.Derive(r.Context(), name, units)
	if err != nil {
		h.logger.Warn("replay derive failed", zap.String("file", name), zap.Error(err))
		handlers.WriteServiceError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.readPump(conn, cancel)

	h.logger.Info("replay started", zap.String("file", name), zap.Float64("rate", rate))
	if err := h.stream(ctx, conn, session.Table, rate); err != nil {
		h.logger.Info("replay stopped", zap.String("file", name), zap.Error(err))
		return
	}
	_ = h.write(conn, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

// readPump drains client frames so control messages are processed, and cancels
// the stream once the client goes away.
func (h *ReplayHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ReplayHandler) stream(ctx context.Context, conn *websocket.Conn, table *derive.Table, rate float64) error {
	times, _ := table.Column(derive.ChannelTime)
	deltas := derive.TimeDeltas(times)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for i := 0; i < table.Len(); i++ {
		wait := h.gap(deltas[i], rate)
		timer := time.NewTimer(wait)
	waiting:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-ticker.C:
				if err := h.write(conn, websocket.PingMessage, nil); err != nil {
					timer.Stop()
					return err
				}
			case <-timer.C:
				break waiting
			}
		}

		if err := h.writeJSON(conn, Message{Type: "row", Index: i, Row: table.NullableRow(i)}); err != nil {
			return err
		}
	}
	return h.writeJSON(conn, Message{Type: "done", Rows: table.Len()})
}

func (h *ReplayHandler) gap(dt, rate float64) time.Duration {
	if dt <= 0 || derive.IsMissing(dt) {
		return 0
	}
	wait := time.Duration(dt / rate * float64(time.Second))
	if wait > h.maxGap {
		return h.maxGap
	}
	return wait
}

func (h *ReplayHandler) writeJSON(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.write(conn, websocket.TextMessage, data)
}

func (h *ReplayHandler) write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	return conn.WriteMessage(messageType, data)
}
