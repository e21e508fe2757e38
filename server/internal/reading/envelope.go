package reading

import (
	"encoding/json"
	"time"
)

// Envelope types exchanged over the WebSocket channel.
const (
	TypeInitialData = "initial_data"
	TypeInsight     = "insight"
	TypePing        = "ping"
	TypePong        = "pong"
	TypeEcho        = "echo"
)

// Envelope is the JSON frame sent to clients. Data is omitted for pong.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Update wraps r in the envelope clients expect for a fresh reading.
func Update(r Reading) Envelope {
	return Envelope{Type: r.Kind().UpdateType(), Data: r, Timestamp: r.Time()}
}

// InitialData wraps a snapshot (latest reading per kind).
func InitialData(snapshot map[Kind]Reading, now time.Time) Envelope {
	return Envelope{Type: TypeInitialData, Data: snapshot, Timestamp: now}
}

// Pong is the reply to a client ping.
func Pong(now time.Time) Envelope {
	return Envelope{Type: TypePong, Timestamp: now}
}

// Echo acknowledges an arbitrary client message by returning it verbatim.
func Echo(msg json.RawMessage, now time.Time) Envelope {
	return Envelope{Type: TypeEcho, Data: msg, Timestamp: now}
}
