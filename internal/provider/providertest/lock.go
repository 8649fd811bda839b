package providertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/tagwatch/internal/provider"
)

// TestLocking verifies a held lease blocks a second holder until released.
func TestLocking(t *testing.T, prov provider.Provider) {
	ctx := context.Background()

	ok, err := prov.AcquireLock(ctx, "ct-lock-check", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = prov.AcquireLock(ctx, "ct-lock-check", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	ok, err = prov.AcquireLock(ctx, "ct-lock-other", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "leases are per key")

	require.NoError(t, prov.ReleaseLock(ctx, "ct-lock-check"))

	ok, err = prov.AcquireLock(ctx, "ct-lock-check", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestLockExpiry verifies an abandoned lease frees itself after its TTL.
func TestLockExpiry(t *testing.T, prov provider.Provider) {
	ctx := context.Background()

	ok, err := prov.AcquireLock(ctx, "ct-expiring-lock", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = prov.AcquireLock(ctx, "ct-expiring-lock", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(2 * time.Second)

	ok, err = prov.AcquireLock(ctx, "ct-expiring-lock", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
