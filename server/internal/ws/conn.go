package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Errors returned by Conn.Send.
var (
	ErrClosed       = errors.New("ws: connection closed")
	ErrSlowConsumer = errors.New("ws: send buffer full")
)

// Conn is one registered client connection. Send must not block; a full or
// closed connection reports an error and the hub drops it.
type Conn interface {
	ID() string
	Send(msg []byte) error
	Close() error
}

// client is the Conn backing a real WebSocket session. Outgoing frames are
// queued on send and written by writePump.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
}

func (c *client) ID() string { return c.id }

// Send queues msg for writePump without blocking.
func (c *client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close stops the write pump, which sends a close frame and closes the socket.
// Safe to call more than once.
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// writePump drains the send queue to the socket and sends periodic pings.
// Runs in its own goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				// Deregistered or the hub is shutting down.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("ws: write failed", "id", c.id, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
