// Package memory implements the Provider interface in process memory.
// It backs the local serve mode and tests; state does not survive restarts.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dwsmith1983/tagwatch/internal/provider"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*Provider)(nil)

// Provider is an in-memory key-value store with lease support.
type Provider struct {
	mu    sync.Mutex
	data  map[string]string
	locks map[string]time.Time // key -> expiry
	now   func() time.Time
}

// New creates an empty in-memory provider.
func New() *Provider {
	return &Provider{
		data:  make(map[string]string),
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// SetClock overrides the clock used for lease expiry.
func (p *Provider) SetClock(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

func (p *Provider) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.data[key]
	return v, ok, nil
}

func (p *Provider) Put(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = value
	return nil
}

func (p *Provider) List(_ context.Context, prefix string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0)
	for k := range p.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (p *Provider) AcquireLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if exp, held := p.locks[key]; held && now.Before(exp) {
		return false, nil
	}
	p.locks[key] = now.Add(ttl)
	return true, nil
}

func (p *Provider) ReleaseLock(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.locks, key)
	return nil
}

// Start is a no-op.
func (p *Provider) Start(_ context.Context) error { return nil }

// Stop is a no-op.
func (p *Provider) Stop(_ context.Context) error { return nil }

// Ping always succeeds.
func (p *Provider) Ping(_ context.Context) error { return nil }

// Len returns the number of stored keys.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.data)
}
