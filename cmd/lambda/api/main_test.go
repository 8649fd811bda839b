package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_MissingTableReturns500(t *testing.T) {
	t.Setenv("TABLE_NAME", "")
	t.Setenv("STORE_BACKEND", "")

	req := events.APIGatewayV2HTTPRequest{RawPath: "/status"}
	req.RequestContext.HTTP.Method = http.MethodGet

	resp, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "Configuration error", body["error"])
	assert.Contains(t, body["details"], "TABLE_NAME")
}
