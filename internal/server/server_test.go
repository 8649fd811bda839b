package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/tagwatch/internal/config"
	"github.com/dwsmith1983/tagwatch/internal/deploy"
	"github.com/dwsmith1983/tagwatch/internal/engine"
	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/internal/provider/memory"
	"github.com/dwsmith1983/tagwatch/internal/testutil"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	ts       *httptest.Server
	store    *memory.Provider
	deployer *testutil.Deployer
}

func setupWithDeployer(t *testing.T, upstream types.VersionMarker, d engine.Deployer) (*httptest.Server, *memory.Provider) {
	t.Helper()
	store := memory.New()
	eng := engine.New(store, testutil.NewFetcher(upstream), d)
	eng.SetClock(func() time.Time { return t0 })
	eng.SetRepository("acme/widget")

	ts := httptest.NewServer(New(":0", eng, nil).Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func setup(t *testing.T, upstream types.VersionMarker) *testEnv {
	t.Helper()
	env := &testEnv{deployer: &testutil.Deployer{}}
	env.ts, env.store = setupWithDeployer(t, upstream, env.deployer)
	return env
}

func do(t *testing.T, method, url string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestCheckUpdates_NewRelease(t *testing.T) {
	env := setup(t, "v1.1.0")
	require.NoError(t, env.store.Put(context.Background(), provider.KeyLatestTag, "v1.0.0"))

	resp, body := do(t, http.MethodGet, env.ts.URL+"/check-updates")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "v1.0.0", body["oldTag"])
	assert.Equal(t, "v1.1.0", body["newTag"])
	assert.Equal(t, true, body["deploymentTriggered"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", body["timestamp"])
	assert.Len(t, env.deployer.Calls(), 1)
}

func TestCheckUpdates_Unchanged(t *testing.T) {
	env := setup(t, "v1.1.0")
	require.NoError(t, env.store.Put(context.Background(), provider.KeyLatestTag, "v1.1.0"))

	resp, body := do(t, http.MethodGet, env.ts.URL+"/check-updates")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "v1.1.0", body["currentTag"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", body["lastCheck"])
	assert.NotContains(t, body, "deploymentTriggered")
	assert.Empty(t, env.deployer.Calls())
}

func TestCheckUpdates_FirstRunOldTagNull(t *testing.T) {
	env := setup(t, "v0.1.0")

	_, body := do(t, http.MethodGet, env.ts.URL+"/check-updates")
	v, ok := body["oldTag"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "v0.1.0", body["newTag"])
}

func TestCheckUpdates_TriggerFailure(t *testing.T) {
	env := setup(t, "v1.1.0")
	env.deployer.Err = &deploy.HTTPError{StatusCode: 503, Body: "maintenance"}
	require.NoError(t, env.store.Put(context.Background(), provider.KeyLatestTag, "v1.0.0"))

	resp, body := do(t, http.MethodGet, env.ts.URL+"/check-updates")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Deployment trigger failed", body["error"])
	assert.Contains(t, body["details"], "maintenance")
	assert.Equal(t, "v1.0.0", body["oldTag"])
	assert.Equal(t, "v1.1.0", body["newTag"])

	latest, _, err := env.store.Get(context.Background(), provider.KeyLatestTag)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", latest)
}

func TestCheckUpdates_FetchFailure(t *testing.T) {
	env := setup(t, "")

	resp, body := do(t, http.MethodGet, env.ts.URL+"/check-updates")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to fetch latest release", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestManualTrigger_Success(t *testing.T) {
	env := setup(t, "v1.1.0")

	resp, body := do(t, http.MethodPost, env.ts.URL+"/manual-trigger")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Manual deployment triggered", body["message"])
	assert.Equal(t, "v1.1.0", body["tag"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", body["timestamp"])
}

func TestManualTrigger_WebhookNotConfigured(t *testing.T) {
	webhook := deploy.NewWebhook("", "acme/widget", types.WebhookFormatJSON, time.Second)
	ts, _ := setupWithDeployer(t, "v1.1.0", webhook)

	resp, body := do(t, http.MethodPost, ts.URL+"/manual-trigger")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Configuration error", body["error"])
	assert.Contains(t, body["details"], "DEPLOY_WEBHOOK_URL")
	assert.Equal(t, "v1.1.0", body["tag"])
}

func TestStatus(t *testing.T) {
	env := setup(t, "v1.1.0")
	do(t, http.MethodGet, env.ts.URL+"/check-updates")

	resp, body := do(t, http.MethodGet, env.ts.URL+"/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "v1.1.0", body["currentTag"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", body["lastCheck"])
	assert.Equal(t, "acme/widget", body["repository"])
	deployments, ok := body["recentDeployments"].([]any)
	require.True(t, ok)
	assert.Len(t, deployments, 1)
}

func TestStatus_Empty(t *testing.T) {
	env := setup(t, "v1.1.0")

	_, body := do(t, http.MethodGet, env.ts.URL+"/status")
	assert.Equal(t, "none", body["currentTag"])
	assert.Equal(t, "never", body["lastCheck"])
	assert.Equal(t, []any{}, body["recentDeployments"])
}

func TestStatus_StoreError(t *testing.T) {
	store := &testutil.FailingStore{Store: memory.New(), FailGet: []string{"*"}}
	eng := engine.New(store, testutil.NewFetcher("v1"), &testutil.Deployer{})
	ts := httptest.NewServer(New(":0", eng, nil).Handler())
	defer ts.Close()

	resp, body := do(t, http.MethodGet, ts.URL+"/status")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "State store error", body["error"])
}

func TestDiscovery(t *testing.T) {
	env := setup(t, "v1.1.0")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/nope"},
		{http.MethodPost, "/status"},
	} {
		resp, body := do(t, tc.method, env.ts.URL+tc.path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, tc.path)
		assert.NotEmpty(t, body["message"])
		endpoints, ok := body["endpoints"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, endpoints, "GET /check-updates")
	}
	assert.Empty(t, env.deployer.Calls())
}

func TestRequestID(t *testing.T) {
	env := setup(t, "v1.1.0")

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/status", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp2, _ := do(t, http.MethodGet, env.ts.URL+"/status")
	assert.Len(t, resp2.Header.Get("X-Request-ID"), 16)
}

type panickingService struct{}

func (panickingService) CheckForUpdates(context.Context) (*types.CheckResult, error) {
	panic("boom")
}

func (panickingService) ManualTrigger(context.Context) (*types.ManualResult, error) {
	return nil, errors.New("unused")
}

func (panickingService) Status(context.Context) (*types.StatusSnapshot, error) {
	return nil, errors.New("unused")
}

func TestRecoverer(t *testing.T) {
	ts := httptest.NewServer(New(":0", panickingService{}, nil).Handler())
	defer ts.Close()

	resp, body := do(t, http.MethodGet, ts.URL+"/check-updates")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "boom", body["details"])
}

func TestUnavailable(t *testing.T) {
	ts := httptest.NewServer(Unavailable(config.ErrMissingStore))
	defer ts.Close()

	resp, body := do(t, http.MethodGet, ts.URL+"/status")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body["details"], "TABLE_NAME")
}
