// Package doiverify resolves DOIs against doi.org.
package doiverify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the DOI resolver.
	BaseURL = "https://doi.org"

	// RateLimit keeps well under the resolver's tolerance for batch jobs.
	RateLimit = 5.0

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 15 * time.Second
)

// Result is the outcome of resolving one DOI.
type Result struct {
	DOI        string
	Resolvable bool
	Status     int
}

// Client is a rate-limited HTTP client for DOI resolution.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom resolver URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// NewClient creates a DOI resolution client. Redirects are not followed:
// the resolver answering with a redirect is the signal that the DOI exists.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL: BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve checks whether a DOI resolves. A 2xx or 3xx answer from the
// resolver counts as resolvable.
func (c *Client) Resolve(ctx context.Context, doi string) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	url := c.baseURL + "/" + strings.TrimSpace(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %q: %w", doi, err)
	}
	resp.Body.Close()

	return Result{
		DOI:        doi,
		Resolvable: resp.StatusCode >= 200 && resp.StatusCode < 400,
		Status:     resp.StatusCode,
	}, nil
}
