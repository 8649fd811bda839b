package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ServeAPIGatewayV2 runs an API Gateway HTTP API (payload v2) request through h.
func ServeAPIGatewayV2(ctx context.Context, h http.Handler, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	httpReq, err := toHTTPRequest(ctx, req)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	rw := newResponseWriter()
	h.ServeHTTP(rw, httpReq)

	headers := make(map[string]string, len(rw.header))
	for k, v := range rw.header {
		headers[k] = strings.Join(v, ",")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: rw.status,
		Headers:    headers,
		Body:       rw.body.String(),
	}, nil
}

func toHTTPRequest(ctx context.Context, req events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding request body: %w", err)
		}
		body = decoded
	}

	path := req.RawPath
	if path == "" {
		path = "/"
	}
	if req.RawQueryString != "" {
		path += "?" + req.RawQueryString
	}

	method := req.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.RequestContext.RequestID != "" && httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", req.RequestContext.RequestID)
	}
	return httpReq, nil
}

type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: make(http.Header), status: http.StatusOK}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) WriteHeader(status int) {
	if w.wrote {
		return
	}
	w.status = status
	w.wrote = true
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.body.Write(b)
}
