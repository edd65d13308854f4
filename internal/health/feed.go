package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Messages queued per subscriber before it is dropped
	sendBuffer = 64
)

// Feed pushes every tick to websocket subscribers as JSON. It is a loop observer;
// a slow subscriber is disconnected rather than allowed to block the loop.
type Feed struct {
	upgrader websocket.Upgrader
	logger   *logrus.Entry

	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	closed  bool
}

type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *subscriber) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// NewFeed creates a new tick feed
func NewFeed(logger *logrus.Logger) *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			// The feed is read-only and served on the monitor port
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.WithField("component", "feed"),
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the subscriber
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	c := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.Close()
		return
	}
	f.clients[c] = struct{}{}
	total := len(f.clients)
	f.mu.Unlock()

	f.logger.WithField("total", total).Debug("Subscriber connected")

	go f.writePump(c)
	go f.readPump(c)
}

// OnTick broadcasts the tick to all subscribers
func (f *Feed) OnTick(tick models.Tick) {
	payload, err := json.Marshal(tick)
	if err != nil {
		f.logger.WithError(err).Error("Failed to encode tick")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- payload:
		default:
			f.logger.Warn("Subscriber send buffer full, dropping subscriber")
			f.removeLocked(c)
		}
	}
}

// Subscribers returns the number of connected subscribers
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every subscriber and refuses new ones
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for c := range f.clients {
		f.removeLocked(c)
	}
}

func (f *Feed) remove(c *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(c)
}

func (f *Feed) removeLocked(c *subscriber) {
	if _, ok := f.clients[c]; !ok {
		return
	}
	delete(f.clients, c)
	c.close()
}

// readPump discards client messages and notices disconnects
func (f *Feed) readPump(c *subscriber) {
	defer f.remove(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.WithError(err).Debug("Subscriber read error")
			}
			return
		}
	}
}

func (f *Feed) writePump(c *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				f.remove(c)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				f.remove(c)
				return
			}
		}
	}
}
