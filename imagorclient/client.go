package imagorclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cshum/imagor/imagorpath"

	"go_editor/editor"
)

// DefaultRequestTimeout bounds preview fetches against a slow imagor.
const DefaultRequestTimeout = 30 * time.Second

// ClientConfig holds the settings for an imagor service client.
type ClientConfig struct {
	// BaseURL is the imagor server root, e.g. "http://localhost:8000"
	BaseURL string
	// Secret is the imagor HMAC signing secret. Empty means the server
	// runs with IMAGOR_UNSAFE and paths use the unsafe prefix.
	Secret string
	// AllowSelfSignedCerts disables TLS certificate verification
	AllowSelfSignedCerts bool
	// Timeout for HTTP requests (default: DefaultRequestTimeout)
	Timeout time.Duration
}

// Client talks to a running imagor instance. It builds signed transform
// URLs from editor state and fetches rendered results.
//
// Usage:
//
//	client, err := NewClient(ClientConfig{
//	    BaseURL: cfg.ImagorBaseURL,
//	    Secret:  cfg.ImagorSecret,
//	})
//	previewURL := client.PreviewURL(state)
type Client struct {
	baseURL    string
	signer     imagorpath.Signer
	httpClient *http.Client
}

// NewClient creates a Client from configuration.
// The base URL is validated and trailing slashes are stripped.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("imagor base URL is required")
	}

	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid imagor base URL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("imagor base URL must use http or https, got %q", parsed.Scheme)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	transport := &http.Transport{}
	if config.AllowSelfSignedCerts {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var signer imagorpath.Signer
	if config.Secret != "" {
		signer = imagorpath.NewDefaultSigner(config.Secret)
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// PreviewPath returns the imagor URL path for the state: signed when a
// secret is configured, unsafe-prefixed otherwise.
func (c *Client) PreviewPath(s editor.State) string {
	params := BuildParams(s)
	if c.signer != nil {
		return imagorpath.Generate(params, c.signer)
	}
	return imagorpath.GenerateUnsafe(params)
}

// PreviewURL returns the absolute URL that renders the state.
func (c *Client) PreviewURL(s editor.State) string {
	return c.baseURL + "/" + c.PreviewPath(s)
}

// FetchPreview renders the state through imagor and returns the image
// bytes and the response content type.
func (c *Client) FetchPreview(ctx context.Context, s editor.State) ([]byte, string, error) {
	previewURL := c.PreviewURL(s)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create preview request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("preview request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("imagor returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read preview body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// SourcePath returns the imagor path that serves an image key untouched,
// with no transform filters applied.
func (c *Client) SourcePath(key string) string {
	params := imagorpath.Params{Image: key}
	if c.signer != nil {
		return imagorpath.Generate(params, c.signer)
	}
	return imagorpath.GenerateUnsafe(params)
}

// FetchImage retrieves an untransformed source image through imagor.
// Used by the local thumbnail compositor to obtain base and layer pixels.
func (c *Client) FetchImage(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+c.SourcePath(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("imagor returned status %d for %q: %s",
			resp.StatusCode, key, strings.TrimSpace(string(body)))
	}

	return io.ReadAll(resp.Body)
}

// Health checks the imagor healthcheck endpoint.
// Returns nil when the service answers 200.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("failed to create healthcheck request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("imagor healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// BaseURL returns the configured imagor root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
