package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageSize caps a single client frame.
	maxMessageSize = 4096
)

// Stats are cumulative hub counters.
type Stats struct {
	Connected    int
	Accepted     uint64
	Broadcasts   uint64
	SendFailures uint64
	Malformed    uint64
}

// Hub is the registry of connected dashboard clients. It fans envelopes out
// to every registered Conn and serves new sessions over HTTP.
type Hub struct {
	store    *store.Store
	upgrader websocket.Upgrader
	now      func() time.Time

	mu    sync.RWMutex
	conns map[Conn]struct{}

	accepted     atomic.Uint64
	broadcasts   atomic.Uint64
	sendFailures atomic.Uint64
	malformed    atomic.Uint64
}

// New creates a Hub whose sessions start with the snapshot held in st.
// allowedOrigins restricts upgrades by Origin header; empty allows all.
func New(st *store.Store, allowedOrigins []string) *Hub {
	h := &Hub{
		store: st,
		now:   time.Now,
		conns: make(map[Conn]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Register adds c to the active set.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Deregister removes c from the active set and closes it. Removing a Conn
// that is not registered is a no-op.
func (h *Hub) Deregister(c Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()

	if ok {
		c.Close() //nolint:errcheck
	}
}

// Count returns the number of currently registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends env to every connection registered when it starts. A
// connection whose Send fails is deregistered; the others still receive.
func (h *Hub) Broadcast(env reading.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("ws: marshal envelope", "type", env.Type, "err", err)
		return
	}

	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.broadcasts.Add(1)
	for _, c := range targets {
		if err := c.Send(data); err != nil {
			h.sendFailures.Add(1)
			slog.Warn("ws: send failed, dropping client", "id", c.ID(), "type", env.Type, "err", err)
			h.Deregister(c)
		}
	}
}

// Stats returns a copy of the hub counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Connected:    h.Count(),
		Accepted:     h.accepted.Load(),
		Broadcasts:   h.broadcasts.Load(),
		SendFailures: h.sendFailures.Load(),
		Malformed:    h.malformed.Load(),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the request to WebSocket and serves one session: it
// sends initial_data, then answers pings and echoes other messages until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		slog.Debug("ws: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newClient(uuid.NewString(), conn)
	if err := h.open(c); err != nil {
		slog.Error("ws: build initial data", "err", err)
		conn.Close()
		return
	}
	h.accepted.Add(1)
	slog.Info("ws: client connected", "id", c.id, "remote", r.RemoteAddr, "clients", h.Count())

	go c.writePump()
	h.readPump(c) // blocks until connection closes

	h.Deregister(c)
	slog.Info("ws: client disconnected", "id", c.id, "clients", h.Count())
}

// --- internal ---------------------------------------------------------------

// open queues initial_data and registers c under one lock so no broadcast
// lands between the snapshot and registration.
func (h *Hub) open(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(reading.InitialData(h.store.Latest(), h.now()))
	if err != nil {
		return err
	}
	if err := c.Send(data); err != nil {
		return err
	}
	h.conns[c] = struct{}{}
	return nil
}

// readPump reads client frames until the connection closes or stops
// answering pings.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws: read error", "id", c.id, "err", err)
			}
			return
		}
		if !h.handleMessage(c, msg) {
			return
		}
	}
}

// handleMessage replies to one client frame. It returns false when the reply
// could not be queued and the session should end.
func (h *Hub) handleMessage(c *client, msg []byte) bool {
	if !json.Valid(msg) {
		h.malformed.Add(1)
		slog.Warn("ws: ignoring malformed message", "id", c.id, "bytes", len(msg))
		return true
	}

	var frame struct {
		Type string `json:"type"`
	}
	// Non-object JSON leaves frame empty and is echoed.
	_ = json.Unmarshal(msg, &frame)

	var reply reading.Envelope
	if frame.Type == reading.TypePing {
		reply = reading.Pong(h.now())
	} else {
		reply = reading.Echo(json.RawMessage(msg), h.now())
	}

	data, err := json.Marshal(reply)
	if err != nil {
		slog.Error("ws: marshal reply", "id", c.id, "err", err)
		return true
	}
	if err := c.Send(data); err != nil {
		slog.Warn("ws: reply failed", "id", c.id, "err", err)
		return false
	}
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[Conn]struct{})
	h.mu.Unlock()

	for c := range conns {
		c.Close() //nolint:errcheck
	}
	if len(conns) > 0 {
		slog.Info("ws: closed all clients", "count", len(conns))
	}
}

// originChecker allows requests without an Origin header (non-browser
// clients), any origin when allowed is empty or contains "*", and otherwise
// only exact matches.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
