// Package stream fans race frames out to websocket viewers.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/louisbranch/racesim/internal/platform/timeouts"
	"github.com/louisbranch/racesim/internal/services/race/app"
)

// readLimit caps messages from viewers; they only send control frames.
const readLimit = 512

// Hub is a frame sink that broadcasts every frame to connected viewers.
// Viewers that join mid-race receive the latest frame first.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	done chan struct{}
	once sync.Once
}

// write sends one message under the client's lock and write deadline.
func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(messageType, data)
}

// writeLocked is write for callers already holding c.mu.
func (c *client) writeLocked(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeouts.FrameWrite)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// NewHub returns an empty hub. A nil logger logs to stderr.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			// Frames are read-only race data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the viewer registered until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("stream upgrade: %v", err)
		return
	}
	c := &client{conn: conn, done: make(chan struct{})}
	last, ok := h.add(c)
	if !ok {
		c.close()
		return
	}
	defer h.remove(c)

	if last != nil {
		err = c.writeLocked(websocket.TextMessage, last)
	}
	c.mu.Unlock()
	if err != nil {
		return
	}
	go h.ping(c)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(timeouts.Pong))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.Pong))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) ping(c *client) {
	ticker := time.NewTicker(timeouts.Ping)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// add registers c and returns the latest frame to catch it up with. On
// success c is returned locked; the caller unlocks it once the catch-up
// frame is written so that no newer frame reaches the viewer first.
func (h *Hub) add(c *client) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c.mu.Lock()
	h.clients[c] = struct{}{}
	return h.last, true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish implements app.FrameSink. Viewers that cannot keep up are
// dropped; a slow viewer never fails the race.
func (h *Hub) Publish(ctx context.Context, frame app.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(newFrameMessage(frame))
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Snapshot.Tick, err)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errors.New("stream hub is closed")
	}
	h.last = data
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.write(websocket.TextMessage, data); err != nil {
			h.logger.Printf("stream drop viewer %s: %v", c.conn.RemoteAddr(), err)
			h.remove(c)
		}
	}
	return nil
}

// Close disconnects every viewer and rejects later frames.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "race over"))
		c.close()
	}
	return nil
}

var _ app.FrameSink = (*Hub)(nil)
