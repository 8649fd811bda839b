// Package upstream fetches the current release tag of the watched repository.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dwsmith1983/tagwatch/internal/breaker"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// GitHub API defaults.
const (
	DefaultAPIURL  = "https://api.github.com"
	DefaultTimeout = 10 * time.Second
	apiVersion     = "2022-11-28"
	maxBodyBytes   = 1 << 20
)

// UserAgent identifies tagwatch to the GitHub API. Overridden at link time.
var UserAgent = "tagwatch/dev"

// ErrMalformedRelease is returned when the release body cannot be used.
var ErrMalformedRelease = errors.New("malformed release response")

// Release is the subset of the GitHub release object tagwatch reads.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// StatusError reports a non-2xx response from the release endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github returned status %d: %s", e.StatusCode, e.Body)
}

// GitHubClient reads the latest release of one repository.
type GitHubClient struct {
	client     *http.Client
	baseURL    string
	repository string
	token      string
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewGitHubClient creates a client for the repository ("owner/name").
// An empty token sends unauthenticated requests.
func NewGitHubClient(baseURL, repository, token string, timeout time.Duration) *GitHubClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := slog.Default()
	return &GitHubClient{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		repository: repository,
		token:      token,
		breaker:    breaker.New("github", breaker.DefaultConfig(), logger),
		logger:     logger,
	}
}

// SetLogger overrides the default logger.
func (c *GitHubClient) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Repository returns the watched repository.
func (c *GitHubClient) Repository() string { return c.repository }

// FetchLatestMarker returns the latest release tag. Any failure is logged and
// reported as an absent marker.
func (c *GitHubClient) FetchLatestMarker(ctx context.Context) (types.VersionMarker, bool) {
	rel, err := c.LatestRelease(ctx)
	if err != nil {
		c.logger.Error("failed to fetch latest release", "repository", c.repository, "error", err)
		return "", false
	}
	return types.VersionMarker(rel.TagName), true
}

// LatestRelease calls the "latest release" endpoint.
func (c *GitHubClient) LatestRelease(ctx context.Context) (*Release, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Release), nil
}

func (c *GitHubClient) fetch(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading github response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRelease, err)
	}
	if strings.TrimSpace(rel.TagName) == "" {
		return nil, fmt.Errorf("%w: empty tag_name", ErrMalformedRelease)
	}
	return &rel, nil
}
