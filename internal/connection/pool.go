package connection

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Pool keeps one Handle per distinct endpoint.
//
// Addresses are compared after NormalizeAddress, so "http://host:1" and
// "ws://host:1/" share a handle. Unlike Registry, Pool validates addresses.
type Pool struct {
	settings

	group singleflight.Group

	mu      sync.RWMutex
	handles map[string]*Handle // normalized address → handle
	closed  bool
}

// NewPool creates an empty pool.
func NewPool(cfg Config, opts ...Option) *Pool {
	return &Pool{
		settings: newSettings(cfg, opts),
		handles:  make(map[string]*Handle),
	}
}

// Get returns the handle for address, creating it on first use.
func (p *Pool) Get(address string) (*Handle, error) {
	key, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	h, ok := p.handles[key]
	closed := p.closed
	p.mu.RUnlock()

	if closed {
		return nil, ErrRegistryClosed
	}
	if ok {
		return h, nil
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.closed {
			return nil, ErrRegistryClosed
		}
		if h, ok := p.handles[key]; ok {
			return h, nil
		}

		h := newHandle(address, p.settings)
		p.handles[key] = h
		p.metrics.HandleCreated()
		h.start()

		p.logger.Info("realtime connection created", "handle_id", h.id, "address", address)
		return h, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Handle), nil
}

// Len returns the number of handles in the pool.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handles)
}

// Close shuts down every handle. Get fails with ErrRegistryClosed afterwards,
// including for addresses already in the pool.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	hs := make([]*Handle, 0, len(p.handles))
	for _, h := range p.handles {
		hs = append(hs, h)
	}
	p.mu.Unlock()

	return closeHandles(ctx, p.logger, hs)
}
