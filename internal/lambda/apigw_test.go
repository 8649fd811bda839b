package lambda

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v2Request(method, path string) events.APIGatewayV2HTTPRequest {
	req := events.APIGatewayV2HTTPRequest{RawPath: path}
	req.RequestContext.HTTP.Method = method
	return req
}

func TestServeAPIGatewayV2(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotBody, gotID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotID = r.Header.Get("X-Request-ID")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := v2Request(http.MethodPost, "/manual-trigger")
	req.RawQueryString = "dry=1"
	req.Body = base64.StdEncoding.EncodeToString([]byte(`{"x":1}`))
	req.IsBase64Encoded = true
	req.RequestContext.RequestID = "apigw-req"

	resp, err := ServeAPIGatewayV2(context.Background(), h, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/manual-trigger", gotPath)
	assert.Equal(t, "dry=1", gotQuery)
	assert.Equal(t, `{"x":1}`, gotBody)
	assert.Equal(t, "apigw-req", gotID)
}

func TestServeAPIGatewayV2_DefaultsToOK(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	resp, err := ServeAPIGatewayV2(context.Background(), h, v2Request("", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeAPIGatewayV2_BadBase64(t *testing.T) {
	req := v2Request(http.MethodPost, "/")
	req.Body = "%%%"
	req.IsBase64Encoded = true

	_, err := ServeAPIGatewayV2(context.Background(), http.NotFoundHandler(), req)
	assert.Error(t, err)
}
