// Package slack is a minimal Slack Web API client covering what the
// summarizer needs: channel history, thread replies, channel listing, user
// lookup, message posting, and an auth check. All requests are paced by a
// shared rate limiter and retried once on HTTP 429.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Slack Web API root.
	DefaultBaseURL = "https://slack.com/api"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit keeps sequential requests under one per second,
	// matching Slack's Tier 3 guidance for the history endpoints.
	DefaultRateLimit = 1.0

	// DefaultRetryDelay is how long to sleep before the single retry after
	// an HTTP 429.
	DefaultRetryDelay = 2 * time.Second

	// DefaultMaxMessages caps how many root messages a fetch collects.
	DefaultMaxMessages = 500

	// pageSize is the per-page limit for paginated endpoints.
	pageSize = 200

	// maxAttempts bounds the request loop: the initial attempt plus one
	// retry after a rate-limit response.
	maxAttempts = 2
)

// Client is a rate-limited Slack Web API client.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	token       string
	baseURL     string
	retryDelay  time.Duration
	maxMessages int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the request pacing in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryDelay sets the sleep before the single rate-limit retry.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxMessages caps how many root messages FetchMessages collects.
func WithMaxMessages(n int) ClientOption {
	return func(c *Client) {
		c.maxMessages = n
	}
}

// New creates a Client authenticated with the given bot token.
func New(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		token:       token,
		baseURL:     DefaultBaseURL,
		retryDelay:  DefaultRetryDelay,
		maxMessages: DefaultMaxMessages,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// apiResponse is the generic ok/error wrapper embedded in every Slack API
// response.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (r apiResponse) apiOK() bool      { return r.OK }
func (r apiResponse) apiError() string { return r.Error }

// apiResult is implemented by response structs via their embedded
// apiResponse.
type apiResult interface {
	apiOK() bool
	apiError() string
}

// responseMetadata carries the pagination cursor.
type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

// call performs one API request with rate-limit pacing and a single bounded
// retry on HTTP 429, then decodes the response into out and checks the ok
// flag. GET with query params when body is nil, POST with a JSON body
// otherwise.
func (c *Client) call(ctx context.Context, method string, params url.Values, body any, out apiResult) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := c.newRequest(ctx, method, params, body)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUpstream, method, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: reading %s response: %v", ErrUpstream, method, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.retryDelay):
				}
				continue
			}
			return fmt.Errorf("%w: %s: %w after %d attempts", ErrUpstream, method, ErrRateLimited, maxAttempts)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: %s returned status %d", ErrUpstream, method, resp.StatusCode)
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: parsing %s response: %v", ErrUpstream, method, err)
		}

		if !out.apiOK() {
			return apiError(method, out.apiError())
		}

		return nil
	}

	return fmt.Errorf("%w: %s: no attempts made", ErrUpstream, method)
}

// newRequest builds the HTTP request for a single attempt.
func (c *Client) newRequest(ctx context.Context, method string, params url.Values, body any) (*http.Request, error) {
	endpoint := c.baseURL + "/" + method

	if body == nil {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating %s request: %w", method, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	return req, nil
}

// apiError maps a Slack error code to the sentinel taxonomy.
func apiError(method, code string) error {
	switch code {
	case "channel_not_found":
		return ErrChannelNotFound
	case "not_in_channel", "access_denied", "missing_scope":
		return fmt.Errorf("%w: %s", ErrAccessDenied, code)
	default:
		return fmt.Errorf("%w: %s returned %q", ErrUpstream, method, code)
	}
}
