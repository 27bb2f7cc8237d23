package validation

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go_editor/core"
)

// ConnectivityResult represents the result of a connectivity check.
type ConnectivityResult struct {
	Reachable  bool
	StatusCode int
	Message    string
	Latency    time.Duration
	Error      error
}

// ConnectivityChecker provides methods to verify network connectivity.
// This is a molecule that composes URL validation with HTTP connectivity tests.
type ConnectivityChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewConnectivityChecker creates a new ConnectivityChecker with default settings.
// Default timeout is 10 seconds.
func NewConnectivityChecker() *ConnectivityChecker {
	return &ConnectivityChecker{
		timeout:              10 * time.Second,
		allowSelfSignedCerts: false,
	}
}

// WithTimeout sets the timeout for connectivity checks.
func (c *ConnectivityChecker) WithTimeout(timeout time.Duration) *ConnectivityChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *ConnectivityChecker) WithAllowSelfSignedCerts(allow bool) *ConnectivityChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckServiceConnectivity tests if a service is reachable using an HTTP GET request.
// This validates the URL format first, then attempts a network connection.
//
// Returns a ConnectivityResult with detailed information about the check.
func (c *ConnectivityChecker) CheckServiceConnectivity(serviceURL string) ConnectivityResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckServiceConnectivityWithContext(ctx, serviceURL)
}

// CheckServiceConnectivityWithContext tests service connectivity with a custom context.
func (c *ConnectivityChecker) CheckServiceConnectivityWithContext(ctx context.Context, serviceURL string) ConnectivityResult {
	// First validate the URL format using the atom
	if err := ValidateServiceURL(serviceURL); err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Invalid URL format",
			Error:     core.ErrInvalidImagorURL(serviceURL, err.Error()),
		}
	}

	client := c.createHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serviceURL, nil)
	if err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Failed to create request",
			Error:     core.ErrImagorUnreachable(serviceURL, err.Error()),
		}
	}

	// Record start time for latency measurement
	startTime := time.Now()

	resp, err := client.Do(req)
	latency := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || ctx.Err() == context.Canceled {
			return ConnectivityResult{
				Reachable: false,
				Message:   "Request cancelled or timed out",
				Latency:   latency,
				Error:     core.ErrImagorUnreachable(serviceURL, ctx.Err().Error()),
			}
		}
		return ConnectivityResult{
			Reachable: false,
			Message:   "Connection failed",
			Latency:   latency,
			Error:     core.ErrImagorUnreachable(serviceURL, err.Error()),
		}
	}
	defer resp.Body.Close()

	// Any response means the service is reachable; 4xx/5xx indicate the
	// service is up but may have auth or configuration issues.
	return ConnectivityResult{
		Reachable:  true,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Service reachable (status: %d)", resp.StatusCode),
		Latency:    latency,
	}
}

// createHTTPClient creates an HTTP client with the configured TLS settings.
func (c *ConnectivityChecker) createHTTPClient() *http.Client {
	client := &http.Client{
		Timeout: c.timeout,
	}

	if c.allowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// IsReachable is a convenience function to check if a service is reachable.
// Returns true if the service responds, false otherwise.
func (c *ConnectivityChecker) IsReachable(serviceURL string) bool {
	result := c.CheckServiceConnectivity(serviceURL)
	return result.Reachable
}

// CheckImagorConnectivity checks connectivity to the imagor service using the
// IMAGOR_URL environment variable. Imagor exposes a /healthcheck endpoint
// that responds without a signed path.
func (c *ConnectivityChecker) CheckImagorConnectivity() ConnectivityResult {
	imagorURL := core.GetEnvOrDefault("IMAGOR_URL", "")
	if imagorURL == "" {
		return ConnectivityResult{
			Reachable: false,
			Message:   "IMAGOR_URL not configured",
			Error:     core.ErrMissingConfig("IMAGOR_URL"),
		}
	}
	return c.CheckServiceConnectivity(strings.TrimRight(imagorURL, "/") + "/healthcheck")
}
