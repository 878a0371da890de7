package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/debateprogram/realtime/internal/metrics"
)

// settings are shared by Registry and Pool.
type settings struct {
	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	newClient ClientFactory
}

// Option configures a Registry or Pool.
type Option func(*settings)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithClientFactory replaces the WebSocket client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(s *settings) {
		if f != nil {
			s.newClient = f
		}
	}
}

func newSettings(cfg Config, opts []Option) settings {
	s := settings{
		cfg:       cfg,
		logger:    slog.Default(),
		newClient: NewClient,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Registry owns at most one connection Handle.
//
// The first call to Get creates the Handle bound to the supplied address;
// every later call returns that same Handle. Safe for concurrent use.
type Registry struct {
	settings

	mu     sync.Mutex
	handle *Handle
	closed bool
}

// NewRegistry creates an empty registry. No connection is made until Get.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	return &Registry{settings: newSettings(cfg, opts)}
}

// Get returns the registry's connection handle, creating it bound to address
// on the first call. Later calls return the same handle and ignore address.
//
// Get never blocks on the network and never fails; dial and transport errors
// are reported on the handle's Errors channel.
func (r *Registry) Get(address string) *Handle {
	h, created := r.acquire(address)
	if !created && !sameAddress(h.address, address) {
		r.metrics.AddressConflict()
		r.logger.Warn("ignoring address for existing realtime connection",
			"bound", h.address,
			"requested", address,
		)
	}
	return h
}

// Lookup is the strict form of Get: it returns ErrAddressMismatch when a
// handle already exists for a different endpoint.
func (r *Registry) Lookup(address string) (*Handle, error) {
	h, created := r.acquire(address)
	if !created && !sameAddress(h.address, address) {
		r.metrics.AddressConflict()
		return nil, fmt.Errorf("%w: bound to %q, requested %q", ErrAddressMismatch, h.address, address)
	}
	return h, nil
}

// Peek returns the handle if one has been created, without creating it.
func (r *Registry) Peek() (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle, r.handle != nil
}

// Close shuts the handle down. It is meant for process teardown only:
// the registry keeps returning the same, now closed, handle afterwards.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	h := r.handle
	r.mu.Unlock()

	if h == nil {
		return nil
	}
	return closeHandles(ctx, r.logger, []*Handle{h})
}

// acquire returns the handle, creating and starting it if none exists.
func (r *Registry) acquire(address string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle != nil {
		return r.handle, false
	}

	h := newHandle(address, r.settings)
	r.handle = h
	r.metrics.HandleCreated()

	if r.closed {
		// Never dial after shutdown
		h.close()
		return h, true
	}

	h.start()
	r.logger.Info("realtime connection created", "handle_id", h.id, "address", address)

	return h, true
}

// closeHandles closes hs concurrently, giving up when ctx expires.
func closeHandles(ctx context.Context, logger *slog.Logger, hs []*Handle) error {
	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, h := range hs {
			wg.Add(1)
			go func(h *Handle) {
				defer wg.Done()
				h.close()
			}(h)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Warn("shutdown timeout, realtime connections still closing")
		return ctx.Err()
	}
}
