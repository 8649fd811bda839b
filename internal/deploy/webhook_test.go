package deploy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestWebhook(url string, format types.WebhookFormat) *Webhook {
	w := NewWebhook(url, "acme/widget", format, time.Second)
	w.SetClock(func() time.Time { return fixedNow })
	return w
}

func TestTrigger_NotConfigured(t *testing.T) {
	w := newTestWebhook("", types.WebhookFormatJSON)

	err := w.Trigger(context.Background(), "v1.0.0", types.TriggerManual)
	require.ErrorIs(t, err, ErrWebhookNotConfigured)
	assert.Contains(t, err.Error(), "DEPLOY_WEBHOOK_URL")
}

func TestTrigger_PostsJSONPayload(t *testing.T) {
	var got Payload
	var contentType, method string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		rw.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, types.WebhookFormatJSON)
	require.NoError(t, w.Trigger(context.Background(), "v1.1.0", types.TriggerScheduled))

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, Payload{
		Reason:     "new_release",
		Tag:        "v1.1.0",
		Repository: "acme/widget",
		Timestamp:  "2026-03-01T12:00:00.000Z",
	}, got)
}

func TestTrigger_ManualReason(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, "")
	require.NoError(t, w.Trigger(context.Background(), "v2", types.TriggerManual))
	assert.Equal(t, "manual_trigger", got.Reason)
}

func TestTrigger_NonSuccessCapturesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
		_, _ = rw.Write([]byte("upstream deploy service down"))
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, types.WebhookFormatJSON)
	err := w.Trigger(context.Background(), "v1.1.0", types.TriggerScheduled)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadGateway, he.StatusCode)
	assert.Equal(t, "upstream deploy service down", he.Body)
}

func TestTrigger_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	w := newTestWebhook(url, types.WebhookFormatJSON)
	err := w.Trigger(context.Background(), "v1.1.0", types.TriggerScheduled)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWebhookNotConfigured)
	assert.Contains(t, err.Error(), "webhook POST failed")
}

func TestTrigger_CloudEventsEnvelope(t *testing.T) {
	var raw map[string]interface{}
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &raw)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, types.WebhookFormatCloudEvents)
	require.NoError(t, w.Trigger(context.Background(), "v1.1.0", types.TriggerScheduled))

	assert.Equal(t, "application/cloudevents+json", contentType)
	assert.Equal(t, "1.0", raw["specversion"])
	assert.Equal(t, "dev.tagwatch.deploy.requested", raw["type"])
	assert.Equal(t, "tagwatch/acme/widget", raw["source"])
	assert.Equal(t, "v1.1.0", raw["subject"])
	assert.NotEmpty(t, raw["id"])

	data, ok := raw["data"].(map[string]interface{})
	require.True(t, ok, "data should be inline JSON")
	assert.Equal(t, "v1.1.0", data["tag"])
	assert.Equal(t, "new_release", data["reason"])
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, _, err := encode("xml", Payload{}, fixedNow)
	assert.Error(t, err)
}
