package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evreserve/internal/models"
)

// Hub tracks station WebSocket links and pushes committed session
// events to them. It implements the engine's notification hook; a
// station with no open link simply misses the push, which is fine for a
// best-effort hook.
type Hub struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewHub builds a hub.
func NewHub(writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		connections:  make(map[string]*Connection),
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleStation upgrades GET /ws/stations/{station_id} to a WebSocket.
func (h *Hub) HandleStation(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "station_id")
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(stationID, conn, h.writeTimeout, h.logger, func(id string) {
		h.remove(id)
		cancel()
	})
	h.add(connection)

	go connection.Start(ctx)
	h.logger.Info("station connected", zap.String("station_id", stationID))
}

type eventMessage struct {
	Event   models.EventType `json:"event"`
	Session *models.Session  `json:"session"`
}

// Notify pushes the event to the station's link if one is open.
func (h *Hub) Notify(_ context.Context, session *models.Session, event models.EventType) error {
	h.mu.RLock()
	conn, ok := h.connections[session.StationID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	msg, err := json.Marshal(eventMessage{Event: event, Session: session})
	if err != nil {
		return err
	}
	conn.Send(msg)
	return nil
}

func (h *Hub) add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.StationID()] = conn
}

func (h *Hub) remove(stationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, stationID)
}
