package connection

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClient is an in-memory Client for tests that must not touch the network.
type fakeClient struct {
	cfg        ClientConfig
	connectErr error

	messages chan TimestampedMessage
	errors   chan error

	mu        sync.Mutex
	sent      [][]byte
	connected bool
	closed    bool
}

func (c *fakeClient) Connect(ctx context.Context) error {
	if c.connectErr != nil {
		return c.connectErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.connected = false
	return nil
}

func (c *fakeClient) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}
	c.sent = append(c.sent, append([]byte(nil), data...))
	return nil
}

func (c *fakeClient) Messages() <-chan TimestampedMessage { return c.messages }
func (c *fakeClient) Errors() <-chan error                { return c.errors }

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

func (c *fakeClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeFactory records every client it builds.
type fakeFactory struct {
	// connectErrs is consumed one per attempt; nil entries succeed.
	connectErrs []error

	calls   atomic.Int64
	mu      sync.Mutex
	clients []*fakeClient
}

func (f *fakeFactory) New(cfg ClientConfig, logger *slog.Logger) Client {
	n := f.calls.Add(1)

	c := &fakeClient{
		cfg:      cfg,
		messages: make(chan TimestampedMessage, 16),
		errors:   make(chan error, 1),
	}
	if int(n) <= len(f.connectErrs) {
		c.connectErr = f.connectErrs[n-1]
	}

	f.mu.Lock()
	f.clients = append(f.clients, c)
	f.mu.Unlock()
	return c
}

func (f *fakeFactory) Calls() int { return int(f.calls.Load()) }

func (f *fakeFactory) Last() *fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clients) == 0 {
		return nil
	}
	return f.clients[len(f.clients)-1]
}

// testConfig uses short timings so reconnect tests finish quickly.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ReconnectBaseWait = 10 * time.Millisecond
	cfg.ReconnectMaxWait = 40 * time.Millisecond
	cfg.BufferSize = 16
	return cfg
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

// closeRegistry closes r at test end.
func closeRegistry(t *testing.T, r *Registry) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.Close(ctx); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
}

// blockingClient never finishes dialing until its context is cancelled.
type blockingClient struct {
	release chan struct{}
}

func (c *blockingClient) Connect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.release:
		return ErrNotConnected
	}
}

func (c *blockingClient) Close() error                        { return nil }
func (c *blockingClient) Send(data []byte) error              { return ErrNotConnected }
func (c *blockingClient) Messages() <-chan TimestampedMessage { return nil }
func (c *blockingClient) Errors() <-chan error                { return nil }
func (c *blockingClient) IsConnected() bool                   { return false }
