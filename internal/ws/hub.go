package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger/internal/models"
)

// Client is one websocket connection. Events are queued on send and written by
// writePump, so a slow reader never blocks the router.
type Client struct {
	info         ConnInfo
	conn         *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, info ConnInfo, buffer int, writeTimeout time.Duration) *Client {
	return &Client{
		info:         info,
		conn:         conn,
		send:         make(chan []byte, buffer),
		writeTimeout: writeTimeout,
	}
}

func (c *Client) ID() string { return c.info.ConnID }

// Send queues event. A full queue means the peer is not keeping up; the client
// is closed rather than letting the queue grow.
func (c *Client) Send(event models.Event) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket encode error: conn=%s event=%s err=%v", c.info.ConnID, event.Name, err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		log.Printf("websocket send buffer full, closing conn=%s", c.info.ConnID)
		c.closed = true
		close(c.send)
		return false
	}
}

// Close stops accepting events. Events already queued are still written.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// writePump drains the queue, then closes the socket, which also ends readPump.
func (c *Client) writePump() {
	defer c.conn.Close()

	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: conn=%s err=%v", c.info.ConnID, err)
			c.Close()
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub tracks live clients so they can be closed on shutdown.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = c
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.ID())
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every connection after flushing its queue.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}
}
