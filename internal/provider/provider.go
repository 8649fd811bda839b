// Package provider defines the state store interface for tagwatch.
package provider

import (
	"context"
	"time"
)

// Store is the key-value persistence contract. It is the only memory shared
// across invocations.
type Store interface {
	// Get returns the value for key. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put writes value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error
	// List returns every key with the given prefix in ascending key order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Locker provides short-lived leases used to serialize checks.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// Provider is a complete storage backend.
type Provider interface {
	Store
	Locker

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Ping(ctx context.Context) error
}
