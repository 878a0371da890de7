package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/debateprogram/realtime/internal/metrics"
)

// Handle is the shared reference to one live realtime connection.
//
// A Handle is owned by the Registry or Pool that created it. Callers may
// emit and consume events but cannot close or rebind it.
type Handle struct {
	id      string
	address string // as first supplied
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	newClient ClientFactory
	limiter   *rate.Limiter

	// Output channels
	events chan Event
	errors chan error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	client Client
	state  State
}

// newHandle builds an idle handle. Nothing touches the network until start.
func newHandle(address string, s settings) *Handle {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	h := &Handle{
		id:        id,
		address:   address,
		cfg:       s.cfg,
		logger:    s.logger.With("handle_id", id, "address", address),
		metrics:   s.metrics,
		newClient: s.newClient,
		events:    make(chan Event, max(s.cfg.BufferSize, 1)),
		errors:    make(chan error, 16),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateConnecting,
	}

	if s.cfg.EmitRate > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(s.cfg.EmitRate), max(s.cfg.EmitBurst, 1))
	}

	return h
}

// ID returns the unique identifier of this handle.
func (h *Handle) ID() string { return h.id }

// Address returns the endpoint address the handle was created with.
func (h *Handle) Address() string { return h.address }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// IsConnected reports whether the transport is currently established.
func (h *Handle) IsConnected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state == StateConnected && h.client != nil && h.client.IsConnected()
}

// Events returns inbound events. The channel is closed when the owner shuts down.
func (h *Handle) Events() <-chan Event {
	return h.events
}

// Errors returns transport errors: dial failures, dropped connections and
// malformed addresses. The channel is closed when the owner shuts down.
func (h *Handle) Errors() <-chan error {
	return h.errors
}

// Emit sends a named event with a JSON-encoded payload.
// It fails with ErrNotConnected while the transport is down.
func (h *Handle) Emit(ctx context.Context, event string, payload any) error {
	if event == "" {
		return ErrEmptyEvent
	}

	frame := Event{Name: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		frame.Data = data
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	h.mu.RLock()
	state := h.state
	c := h.client
	h.mu.RUnlock()

	if state == StateClosed {
		return ErrAlreadyClosed
	}
	if c == nil {
		return ErrNotConnected
	}

	if err := c.Send(data); err != nil {
		return err
	}

	h.metrics.EventSent(event)
	return nil
}

// start launches the background connection loop.
func (h *Handle) start() {
	h.wg.Add(1)
	go h.run()
}

// close stops the connection loop and closes the output channels.
func (h *Handle) close() {
	h.mu.Lock()
	if h.state == StateClosed {
		h.mu.Unlock()
		return
	}
	h.state = StateClosed
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()

	close(h.events)
	close(h.errors)

	h.metrics.SetConnected(false)
	h.logger.Info("realtime connection closed")
}

// run dials the endpoint and keeps it connected with exponential backoff.
func (h *Handle) run() {
	defer h.wg.Done()

	target, err := NormalizeAddress(h.address)
	if err != nil {
		h.logger.Error("cannot dial realtime endpoint", "error", err)
		h.setState(StateFailed, nil)
		h.reportError(err)
		return
	}

	wait := h.cfg.ReconnectBaseWait

	for {
		c := h.newClient(h.cfg.clientConfig(target), h.logger)

		if err := c.Connect(h.ctx); err != nil {
			c.Close()
			if h.ctx.Err() != nil {
				return
			}
			h.logger.Warn("realtime dial failed", "error", err, "retry_in", wait)
			h.reportError(err)
		} else {
			h.setState(StateConnected, c)
			h.metrics.SetConnected(true)
			h.logger.Info("realtime connected")
			wait = h.cfg.ReconnectBaseWait

			err := h.pump(c)

			h.setState(StateConnecting, nil)
			h.metrics.SetConnected(false)
			c.Close()

			if err == nil {
				return
			}
			h.logger.Warn("realtime connection lost", "error", err, "retry_in", wait)
			h.reportError(err)
		}

		select {
		case <-h.ctx.Done():
			return
		case <-time.After(wait):
		}

		h.metrics.Reconnect()
		wait = nextWait(wait, h.cfg.ReconnectMaxWait)
	}
}

// pump forwards frames from c until the connection fails or the handle closes.
// A nil return means the handle was closed.
func (h *Handle) pump(c Client) error {
	for {
		select {
		case <-h.ctx.Done():
			return nil

		case err := <-c.Errors():
			return err

		case msg := <-c.Messages():
			h.dispatch(msg)
		}
	}
}

// dispatch decodes one frame and delivers it to Events without blocking.
func (h *Handle) dispatch(msg TimestampedMessage) {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.Name == "" {
		h.logger.Debug("ignoring malformed frame", "bytes", len(msg.Data))
		return
	}
	ev.ReceivedAt = msg.ReceivedAt

	h.metrics.EventReceived(ev.Name)

	select {
	case h.events <- ev:
	default:
		h.metrics.EventDropped()
		h.logger.Warn("event buffer full, dropping event", "event", ev.Name)
	}
}

// setState records a transition unless the handle is already terminal.
func (h *Handle) setState(state State, c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateClosed {
		return
	}
	h.state = state
	h.client = c
}

// reportError delivers err without blocking; old errors are not replaced.
func (h *Handle) reportError(err error) {
	select {
	case h.errors <- err:
	default:
	}
}

// nextWait doubles wait up to maxWait.
func nextWait(wait, maxWait time.Duration) time.Duration {
	if wait <= 0 {
		wait = time.Second
	}
	wait *= 2
	if maxWait > 0 && wait > maxWait {
		wait = maxWait
	}
	return wait
}
