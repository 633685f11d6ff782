// Package websocket pushes accepted readings to live dashboard clients.
package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/realrushil/website/internal/core/domain"
	"github.com/realrushil/website/internal/logging"
	"github.com/realrushil/website/internal/telemetry"
)

const (
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
	queueSize    = 64
)

// Message is the envelope every frame uses.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ReadingEvent is the payload of a "reading" frame.
type ReadingEvent struct {
	Reading   domain.Reading       `json:"reading"`
	Occupancy domain.OccupancyView `json:"occupancy"`
}

// Estimator turns a reading into its occupancy view.
type Estimator interface {
	Estimate(r *domain.Reading) domain.OccupancyView
}

// Hub fans accepted readings out to connected clients. It implements
// ports.ReadingNotifier and runs as a supervised service.
type Hub struct {
	estimator      Estimator
	allowedOrigins []string
	upgrader       websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	events  chan domain.Reading
}

// NewHub creates a hub. Same-origin clients are always accepted; extra
// origins may be listed.
func NewHub(estimator Estimator, allowedOrigins ...string) *Hub {
	h := &Hub{
		estimator:      estimator,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*websocket.Conn]struct{}),
		events:         make(chan domain.Reading, queueSize),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(origin, allowed) {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("websocket origin rejected")
	return false
}

// NotifyReading queues r for broadcast. Readings are dropped when the queue
// is full so ingestion never waits on slow clients.
func (h *Hub) NotifyReading(_ context.Context, r domain.Reading) {
	select {
	case h.events <- r:
	default:
		logging.Debug().Str("device_id", r.DeviceID).Msg("live feed queue full, dropping reading")
	}
}

// HandleWebSocket upgrades the connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	telemetry.LiveClients.Set(float64(n))
	logging.Ctx(r.Context()).Debug().Int("clients", n).Msg("websocket connected")

	go h.readLoop(conn)
}

// readLoop discards client frames and unregisters on disconnect.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	telemetry.LiveClients.Set(float64(n))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve broadcasts queued readings until ctx is done, then closes every
// client.
func (h *Hub) Serve(ctx context.Context) error {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-h.events:
			h.broadcast(Message{
				Type:    "reading",
				Payload: ReadingEvent{Reading: r, Occupancy: h.estimator.Estimate(&r)},
			})
		case <-ping.C:
			h.ping()
		}
	}
}

func (h *Hub) String() string { return "live-feed" }

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Msg("live feed marshal failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
	telemetry.LiveClients.Set(float64(len(h.clients)))
}

func (h *Hub) ping() {
	h.mu.Lock()
	defer h.mu.Unlock()
	deadline := time.Now().Add(writeWait)
	for conn := range h.clients {
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
	telemetry.LiveClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(time.Second)
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = conn.Close()
		delete(h.clients, conn)
	}
	telemetry.LiveClients.Set(0)
}
