package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is what dashboard clients receive for every published case view
type streamMessage struct {
	Type      string             `json:"type"`
	Data      reconcile.Snapshot `json:"data"`
	Degraded  bool               `json:"degraded"`
	Timestamp time.Time          `json:"timestamp"`
}

type streamClient struct {
	conn  *websocket.Conn
	send  chan []byte
	admin string
	// seq is the last snapshot queued for the client, guarded by StreamHub.mu
	seq uint64
}

// StreamHub pushes every new reconciled snapshot to connected dashboards
type StreamHub struct {
	cases   *reconcile.Service
	mu      sync.Mutex
	clients map[*streamClient]struct{}
	cancel  func()
	closed  bool
}

// NewStreamHub subscribes to cases. A nil service gives a hub that only serves the current
// connections.
func NewStreamHub(cases *reconcile.Service) *StreamHub {
	h := &StreamHub{cases: cases, clients: make(map[*streamClient]struct{})}
	if cases != nil {
		h.cancel = cases.Subscribe(h.Broadcast)
	}
	return h
}

// Broadcast sends snap to every client that has not seen a newer one. Clients whose buffer is
// full are dropped.
func (h *StreamHub) Broadcast(snap reconcile.Snapshot) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		zap.S().Errorw("failed to marshal case snapshot", "seq", snap.Seq, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if snap.Seq <= c.seq {
			continue
		}
		select {
		case c.send <- data:
			c.seq = snap.Seq
		default:
			zap.S().Warnw("dropping slow stream client", "admin", c.admin)
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected dashboards
func (h *StreamHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams snapshots until the client goes away
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "error", err)
		return
	}
	c := &streamClient{conn: conn, send: make(chan []byte, sendBuffer), admin: api.AdminEmail(r)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.cases != nil {
		h.sendTo(c, h.cases.Snapshot())
	}
	h.mu.Unlock()
	zap.S().Infow("stream client connected", "admin", c.admin, "clients", h.Clients())

	go h.writePump(c)
	h.readPump(c)
}

// sendTo queues snap for a single client. Must be called with h.mu held.
func (h *StreamHub) sendTo(c *streamClient, snap reconcile.Snapshot) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
		c.seq = snap.Seq
	default:
	}
}

// readPump discards client messages and keeps the pong deadline fresh
func (h *StreamHub) readPump(c *streamClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		zap.S().Infow("stream client disconnected", "admin", c.admin)
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Debugw("stream read error", "error", err)
			}
			return
		}
	}
}

func (h *StreamHub) writePump(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *StreamHub) removeLocked(c *streamClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close unsubscribes and disconnects every client
func (h *StreamHub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func encodeSnapshot(snap reconcile.Snapshot) ([]byte, error) {
	return json.Marshal(streamMessage{
		Type:      "cases",
		Data:      snap,
		Degraded:  snap.Degraded(),
		Timestamp: time.Now().UTC(),
	})
}
