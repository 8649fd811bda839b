// Package testutil provides shared test doubles for tagwatch.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Fetcher returns a fixed marker. An empty Marker reports a failed fetch.
type Fetcher struct {
	mu     sync.Mutex
	Marker types.VersionMarker
	calls  int
}

// NewFetcher creates a Fetcher reporting marker.
func NewFetcher(marker types.VersionMarker) *Fetcher {
	return &Fetcher{Marker: marker}
}

// FetchLatestMarker implements the engine fetcher contract.
func (f *Fetcher) FetchLatestMarker(_ context.Context) (types.VersionMarker, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.Marker, !f.Marker.IsZero()
}

// Set replaces the reported marker.
func (f *Fetcher) Set(marker types.VersionMarker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Marker = marker
}

// Calls returns how many fetches were made.
func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// TriggerCall is one recorded deploy invocation.
type TriggerCall struct {
	Marker types.VersionMarker
	Kind   types.TriggerKind
}

// Deployer records trigger calls and fails with Err when set.
type Deployer struct {
	mu    sync.Mutex
	Err   error
	calls []TriggerCall
}

// Trigger implements the engine deployer contract.
func (d *Deployer) Trigger(_ context.Context, marker types.VersionMarker, kind types.TriggerKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, TriggerCall{Marker: marker, Kind: kind})
	return d.Err
}

// Calls returns a copy of the recorded calls.
func (d *Deployer) Calls() []TriggerCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]TriggerCall(nil), d.calls...)
}

// Sink records published trigger events.
type Sink struct {
	mu     sync.Mutex
	Err    error
	events []types.TriggerEvent
}

// Publish implements the engine event sink contract.
func (s *Sink) Publish(_ context.Context, ev types.TriggerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.Err
}

// Events returns a copy of the published events.
func (s *Sink) Events() []types.TriggerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.TriggerEvent(nil), s.events...)
}

// ErrInjected is returned by FailingStore for configured operations.
var ErrInjected = errors.New("injected store failure")

// FailingStore wraps a Store and fails selected operations.
type FailingStore struct {
	provider.Store

	// Keys to fail per operation. "*" matches everything and an entry ending
	// in "_" matches as a prefix.
	FailGet  []string
	FailPut  []string
	FailList []string
}

var _ provider.Store = (*FailingStore)(nil)

func matches(set []string, key string) bool {
	for _, s := range set {
		if s == "*" || s == key || (strings.HasSuffix(s, "_") && strings.HasPrefix(key, s)) {
			return true
		}
	}
	return false
}

// Get fails when key is in FailGet.
func (s *FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if matches(s.FailGet, key) {
		return "", false, ErrInjected
	}
	return s.Store.Get(ctx, key)
}

// Put fails when key is in FailPut.
func (s *FailingStore) Put(ctx context.Context, key, value string) error {
	if matches(s.FailPut, key) {
		return ErrInjected
	}
	return s.Store.Put(ctx, key, value)
}

// List fails when prefix is in FailList.
func (s *FailingStore) List(ctx context.Context, prefix string) ([]string, error) {
	if matches(s.FailList, prefix) {
		return nil, ErrInjected
	}
	return s.Store.List(ctx, prefix)
}
