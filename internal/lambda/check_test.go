package lambda

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/tagwatch/internal/engine"
	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/internal/provider/memory"
	"github.com/dwsmith1983/tagwatch/internal/testutil"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

func testDeps(upstream types.VersionMarker, deployer *testutil.Deployer) (*Deps, *memory.Provider) {
	store := memory.New()
	eng := engine.New(store, testutil.NewFetcher(upstream), deployer)
	return &Deps{Provider: store, Engine: eng, Logger: slog.Default()}, store
}

func TestHandleCheck_Scheduled(t *testing.T) {
	deployer := &testutil.Deployer{}
	d, store := testDeps("v1.1.0", deployer)
	require.NoError(t, store.Put(context.Background(), provider.KeyLatestTag, "v1.0.0"))

	resp, err := HandleCheck(context.Background(), d, CheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, ModeScheduled, resp.Mode)
	assert.Equal(t, string(types.CheckTriggered), resp.Status)
	assert.True(t, resp.Triggered)
	assert.Equal(t, "v1.1.0", resp.Tag)
	assert.Equal(t, "v1.0.0", resp.PreviousTag)
	assert.NotEmpty(t, resp.EventKey)
	assert.Len(t, deployer.Calls(), 1)
}

func TestHandleCheck_ScheduledFailureIsNotInvocationError(t *testing.T) {
	deployer := &testutil.Deployer{Err: errors.New("webhook down")}
	d, _ := testDeps("v1.1.0", deployer)

	resp, err := HandleCheck(context.Background(), d, CheckRequest{Mode: ModeScheduled})
	require.NoError(t, err)
	assert.False(t, resp.Triggered)
	assert.Equal(t, string(types.CheckTriggerFailed), resp.Status)
	assert.Contains(t, resp.Error, "webhook down")
}

func TestHandleCheck_Manual(t *testing.T) {
	deployer := &testutil.Deployer{}
	d, store := testDeps("v1.1.0", deployer)

	resp, err := HandleCheck(context.Background(), d, CheckRequest{Mode: ModeManual})
	require.NoError(t, err)
	assert.Equal(t, ModeManual, resp.Mode)
	assert.True(t, resp.Triggered)
	assert.Equal(t, types.TriggerManual, deployer.Calls()[0].Kind)

	_, ok, err := store.Get(context.Background(), provider.KeyLatestTag)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleCheck_UnknownMode(t *testing.T) {
	d, _ := testDeps("v1.1.0", &testutil.Deployer{})
	_, err := HandleCheck(context.Background(), d, CheckRequest{Mode: "replay"})
	assert.Error(t, err)
}
