// Package providertest provides shared conformance tests for provider.Provider
// implementations. Call RunAll from a test function to verify a provider
// satisfies the full behavioral contract.
package providertest

import (
	"testing"

	"github.com/dwsmith1983/tagwatch/internal/provider"
)

// RunAll runs the complete provider conformance suite as subtests.
// The provider must start empty.
func RunAll(t *testing.T, prov provider.Provider) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) { TestGetMissing(t, prov) })
	t.Run("PutGet", func(t *testing.T) { TestPutGet(t, prov) })
	t.Run("PutOverwrite", func(t *testing.T) { TestPutOverwrite(t, prov) })
	t.Run("ListPrefix", func(t *testing.T) { TestListPrefix(t, prov) })
	t.Run("ListEmpty", func(t *testing.T) { TestListEmpty(t, prov) })
	t.Run("Locking", func(t *testing.T) { TestLocking(t, prov) })
	t.Run("LockExpiry", func(t *testing.T) { TestLockExpiry(t, prov) })
}
