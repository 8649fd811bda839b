package providertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/tagwatch/internal/provider"
)

// TestGetMissing verifies a missing key is reported as absent, not as an error.
func TestGetMissing(t *testing.T, prov provider.Provider) {
	ctx := context.Background()

	v, ok, err := prov.Get(ctx, "ct-missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

// TestPutGet verifies a written value reads back unchanged.
func TestPutGet(t *testing.T, prov provider.Provider) {
	ctx := context.Background()

	require.NoError(t, prov.Put(ctx, "ct-latest", "v1.0.0"))

	v, ok, err := prov.Get(ctx, "ct-latest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1.0.0", v)
}

// TestPutOverwrite verifies the last write wins.
func TestPutOverwrite(t *testing.T, prov provider.Provider) {
	ctx := context.Background()

	require.NoError(t, prov.Put(ctx, "ct-overwrite", "a"))
	require.NoError(t, prov.Put(ctx, "ct-overwrite", "b"))

	v, ok, err := prov.Get(ctx, "ct-overwrite")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

// TestListPrefix verifies prefix filtering and ascending key order.
func TestListPrefix(t *testing.T, prov provider.Provider) {
	ctx := context.Background()

	for _, k := range []string{"ctlist_03", "ctlist_01", "ctother_01", "ctlist_02"} {
		require.NoError(t, prov.Put(ctx, k, "{}"))
	}

	keys, err := prov.List(ctx, "ctlist_")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctlist_01", "ctlist_02", "ctlist_03"}, keys)
}

// TestListEmpty verifies an unmatched prefix yields no keys and no error.
func TestListEmpty(t *testing.T, prov provider.Provider) {
	keys, err := prov.List(context.Background(), "ct-nothing-here_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
