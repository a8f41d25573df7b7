// SPDX-License-Identifier: MPL-2.0

package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultPort is the service's conventional listen port.
	DefaultPort = "11434"

	// probeTimeout bounds a single HTTP round trip. Liveness probes must
	// fail fast so the readiness poller keeps its cadence.
	probeTimeout = 5 * time.Second

	// maxResponseBytes is the upper bound on API response size (10 MB).
	// Prevents unbounded memory consumption from a malformed response.
	maxResponseBytes = 10 << 20
)

type (
	// Model is one installed model reported by the service.
	Model struct {
		Name       string
		ModifiedAt string
		Size       int64
	}

	// apiTagsResponse is the JSON wire format of GET /api/tags.
	apiTagsResponse struct {
		Models []apiModel `json:"models"`
	}

	// apiModel is the JSON wire format for a single model entry.
	apiModel struct {
		Name       string `json:"name"`
		ModifiedAt string `json:"modified_at"`
		Size       int64  `json:"size"`
	}

	// Client talks to the local Ollama HTTP API.
	Client struct {
		httpClient *http.Client
		baseURL    string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithHTTPClient sets a custom HTTP client, useful for tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the service address, primarily for test servers
// and the ollama.base_url config key.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// NewClient creates a Client with sensible defaults: the address derived
// from OLLAMA_HOST/OLLAMA_PORT and a short per-request timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: probeTimeout},
		baseURL:    DefaultBaseURL(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBaseURL derives the service address from the OLLAMA_HOST and
// OLLAMA_PORT environment variables, defaulting to localhost:11434. A
// host that already carries a scheme or port keeps it.
func DefaultBaseURL() string {
	host := strings.TrimSpace(os.Getenv("OLLAMA_HOST"))
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		host = "localhost"
	}
	if !strings.Contains(host, ":") {
		port := os.Getenv("OLLAMA_PORT")
		if port == "" {
			port = DefaultPort
		}
		host += ":" + port
	}
	return "http://" + host
}

// BaseURL returns the address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping reports whether the service answers its tags endpoint. Any
// transport error or non-200 status counts as "not up".
func (c *Client) Ping(ctx context.Context) bool {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	//nolint:errcheck // Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return resp.StatusCode == http.StatusOK
}

// ListModels fetches the installed models from the service.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing models: unexpected status %d", resp.StatusCode)
	}

	var tags apiTagsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&tags); err != nil {
		return nil, fmt.Errorf("listing models: decoding response: %w", err)
	}

	models := make([]Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, Model(m))
	}
	return models, nil
}

// HasModel reports whether any installed model satisfies the requested
// name under the MatchesModel rule.
func (c *Client) HasModel(ctx context.Context, requested string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if MatchesModel(m.Name, requested) {
			return true, nil
		}
	}
	return false, nil
}

// MatchesModel reports whether an installed model name satisfies the
// requested one: an exact match, or any model whose name starts with the
// requested base name (the part before the tag separator). A request for
// "qwen3:4b" is satisfied by an installed "qwen3:0.6b".
func MatchesModel(installed, requested string) bool {
	if installed == requested {
		return true
	}
	base, _, _ := strings.Cut(requested, ":")
	return base != "" && strings.HasPrefix(installed, base)
}

// get performs a GET against the service.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}
