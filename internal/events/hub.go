// Package events fans out domain events to websocket clients.
package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"coopcontrol/internal/clock"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types
const (
	TypeAstronomicalAdded  = "astronomical.added"
	TypeApplicationCreated = "application.created"
	TypeApplicationStatus  = "application.status"
	TypeHardwareCreated    = "hardware.created"
	TypeHardwareStatus     = "hardware.status"
)

const (
	sendBuffer = 16
	writeWait  = 5 * time.Second
)

// Event is the JSON frame sent to clients
type Event struct {
	Type string      `json:"type"`
	Time time.Time   `json:"time"`
	Data interface{} `json:"data"`
}

// Publisher is implemented by anything that accepts events
type Publisher interface {
	Publish(eventType string, data interface{})
}

// NopPublisher discards events
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(string, interface{}) {}

// ClientObserver is told the client count after every connect or disconnect
type ClientObserver func(n int)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client wraps a websocket connection with its outbound queue
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub tracks connected clients and broadcasts events to them
type Hub struct {
	clock    clock.Clock
	logger   *zap.Logger
	observer ClientObserver

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewHub creates a hub. observer may be nil.
func NewHub(clk clock.Clock, logger *zap.Logger, observer ClientObserver) *Hub {
	return &Hub{
		clock:    clk,
		logger:   logger,
		observer: observer,
		clients:  make(map[*client]struct{}),
	}
}

// Publish encodes an event and queues it for every client. Clients whose
// queue is full are disconnected.
func (h *Hub) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{
		Type: eventType,
		Time: h.clock.Now().UTC(),
		Data: data,
	})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("Dropping slow event client", zap.String("remote_addr", c.conn.RemoteAddr().String()))
			h.removeLocked(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.notifyLocked()
	h.wg.Add(2)
	h.mu.Unlock()

	h.logger.Debug("Event client connected", zap.String("remote_addr", r.RemoteAddr))

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the client's queue onto the connection
func (h *Hub) writeLoop(c *client) {
	defer h.wg.Done()
	defer c.conn.Close()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(c)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop discards inbound frames and detects disconnects
func (h *Hub) readLoop(c *client) {
	defer h.wg.Done()
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	h.notifyLocked()
}

func (h *Hub) notifyLocked() {
	if h.observer != nil {
		h.observer(len(h.clients))
	}
}

// Close disconnects every client and waits for their goroutines to exit.
// Later connection attempts are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	h.wg.Wait()
}
