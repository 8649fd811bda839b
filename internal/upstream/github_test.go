package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestRelease_Success(t *testing.T) {
	var gotPath, gotAuth, gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"tag_name":"v1.1.0","name":"Release 1.1.0","html_url":"https://example.com/r"}`))
	}))
	defer srv.Close()

	c := NewGitHubClient(srv.URL, "acme/widget", "secret-token", time.Second)
	rel, err := c.LatestRelease(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1.1.0", rel.TagName)
	assert.Equal(t, "/repos/acme/widget/releases/latest", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, UserAgent, gotUA)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
}

func TestLatestRelease_NoTokenOmitsAuthorization(t *testing.T) {
	sawAuth := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"tag_name":"v2"}`))
	}))
	defer srv.Close()

	c := NewGitHubClient(srv.URL, "acme/widget", "", time.Second)
	_, err := c.LatestRelease(context.Background())
	require.NoError(t, err)
	assert.False(t, sawAuth)
}

func TestLatestRelease_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	}))
	defer srv.Close()

	c := NewGitHubClient(srv.URL, "acme/widget", "", time.Second)
	_, err := c.LatestRelease(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, se.Body, "rate limit")
}

func TestLatestRelease_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing tag", `{"name":"no tag here"}`},
		{"blank tag", `{"tag_name":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewGitHubClient(srv.URL, "acme/widget", "", time.Second)
			_, err := c.LatestRelease(context.Background())
			assert.True(t, errors.Is(err, ErrMalformedRelease), "got %v", err)
		})
	}
}

func TestFetchLatestMarker_AbsentOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewGitHubClient(srv.URL, "acme/missing", "", time.Second)
	marker, ok := c.FetchLatestMarker(context.Background())
	assert.False(t, ok)
	assert.True(t, marker.IsZero())
}

func TestFetchLatestMarker_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewGitHubClient(url, "acme/widget", "", 200*time.Millisecond)
	_, ok := c.FetchLatestMarker(context.Background())
	assert.False(t, ok)
}

func TestFetchLatestMarker_Present(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v3.0.0-rc.1"}`))
	}))
	defer srv.Close()

	c := NewGitHubClient(srv.URL+"/", "acme/widget", "", time.Second)
	marker, ok := c.FetchLatestMarker(context.Background())
	require.True(t, ok)
	assert.Equal(t, "v3.0.0-rc.1", marker.String())
}
