package connection

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrAddressMismatch = errors.New("address does not match bound connection")
	ErrRegistryClosed  = errors.New("registry closed")
	ErrEmptyEvent      = errors.New("event name is empty")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Event is one named message on the realtime connection.
// On the wire each event is a single JSON text frame: {"event": "...", "data": ...}.
type Event struct {
	Name       string          `json:"event"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"-"`
}

// State is the lifecycle state of a Handle.
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateFailed // address could not be parsed; terminal
	StateClosed // registry shut down; terminal
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., ws://localhost:5002/)
	Token        string        // Bearer token for the Authorization header (empty = no auth)
	PingInterval time.Duration // How often the client pings the server
	PingTimeout  time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 25 * time.Second,
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}

// ClientFactory builds the transport client for one connection attempt.
type ClientFactory func(cfg ClientConfig, logger *slog.Logger) Client

// Config configures the handles created by a Registry or Pool.
type Config struct {
	Token             string        // Bearer token sent on every dial
	PingInterval      time.Duration // Client ping interval
	PingTimeout       time.Duration // Stale connection threshold
	WriteTimeout      time.Duration // Write deadline for sends
	BufferSize        int           // Inbound frame and event buffer size
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
	EmitRate          float64       // Outbound events per second (0 = unlimited)
	EmitBurst         int           // Outbound burst size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	client := DefaultClientConfig()
	return Config{
		PingInterval:      client.PingInterval,
		PingTimeout:       client.PingTimeout,
		WriteTimeout:      client.WriteTimeout,
		BufferSize:        client.BufferSize,
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  30 * time.Second,
	}
}

// clientConfig derives the per-attempt client config for the given dial URL.
func (c Config) clientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:          url,
		Token:        c.Token,
		PingInterval: c.PingInterval,
		PingTimeout:  c.PingTimeout,
		WriteTimeout: c.WriteTimeout,
		BufferSize:   c.BufferSize,
	}
}
