package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"relmod-agent/src/version"
)

// HTTPClient talks to a package registry over its JSON API.
type HTTPClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a registry client for the given API base URL. The
// token may be empty for read-only queries against a public registry.
func NewHTTPClient(baseURL, apiToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// latestResponse is the registry's answer to a latest-version query.
type latestResponse struct {
	Module  string `json:"module"`
	Version string `json:"version"`
}

// LatestVersion fetches the most recent stable published version of a module.
// A lookup that comes back empty is retried exactly once against the same
// query before giving up; registries are eventually consistent right after an
// index rebuild.
func (c *HTTPClient) LatestVersion(ctx context.Context, module string) (version.Version, error) {
	v, err := c.fetchLatest(ctx, module)
	if err == nil && v == "" {
		v, err = c.fetchLatest(ctx, module)
	}
	if err != nil {
		return version.Version{}, err
	}
	if v == "" {
		return version.Version{}, fmt.Errorf("no published versions for %s: %w", module, ErrModuleNotFound)
	}

	parsed, err := version.Parse(v)
	if err != nil {
		return version.Version{}, fmt.Errorf("registry returned malformed version for %s: %w", module, err)
	}
	return parsed, nil
}

func (c *HTTPClient) fetchLatest(ctx context.Context, module string) (string, error) {
	endpoint := fmt.Sprintf("%s/modules/%s/latest", c.baseURL, url.PathEscape(module))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", module, ErrModuleNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("latest-version query for %s: %w", module, ErrAuthFailed)
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("latest-version query for %s: %w", module, ErrRateLimited)
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("latest-version query failed with status %d: %s", resp.StatusCode, string(body))
	}

	var latest latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return "", fmt.Errorf("failed to decode registry response: %w", err)
	}
	return latest.Version, nil
}

// Exists reports whether the exact version of a module is already published.
func (c *HTTPClient) Exists(ctx context.Context, module string, ver string) (bool, error) {
	endpoint := fmt.Sprintf("%s/modules/%s/versions/%s", c.baseURL, url.PathEscape(module), url.PathEscape(ver))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, fmt.Errorf("existence query for %s %s: %w", module, ver, ErrAuthFailed)
	case http.StatusTooManyRequests:
		return false, fmt.Errorf("existence query for %s %s: %w", module, ver, ErrRateLimited)
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("existence query failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func (c *HTTPClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return resp, nil
}
