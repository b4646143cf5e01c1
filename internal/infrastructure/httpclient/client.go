// Package httpclient is the JSON-over-HTTP client shared by the feed reader and
// the marketplace adapters. It adds retry with exponential backoff, an optional
// token-bucket rate limit and bounded response reading.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// StatusEnhanceYourCalm is the non-standard throttling status returned by Yandex Market
const StatusEnhanceYourCalm = 420

// DefaultMaxResponseBytes bounds JSON responses
const DefaultMaxResponseBytes int64 = 32 << 20

// Config configures a Client
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	UserAgent        string
	Headers          map[string]string
	Retry            RetryConfig
	RateLimitQPS     float64 // 0 disables rate limiting
	RateLimitBurst   int
	MaxResponseBytes int64
	Logger           *zap.Logger
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	ShouldRetry func(resp *http.Response, err error) bool
}

// DefaultRetryConfig retries transport errors, 5xx and throttling responses
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		RetryDelay:  1 * time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		ShouldRetry: IsRetryable,
	}
}

// IsRetryable reports whether a response or transport error is transient
func IsRetryable(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, ErrResponseTooLarge)
	}
	return resp.StatusCode >= 500 ||
		resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == StatusEnhanceYourCalm
}

// Client performs JSON requests against one base URL
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	retry      RetryConfig
	limiter    *rate.Limiter
	maxBody    int64
	logger     *zap.Logger
}

// New creates a Client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxRetries < 0 {
		cfg.Retry.MaxRetries = 0
	}
	if cfg.Retry.ShouldRetry == nil {
		cfg.Retry.ShouldRetry = IsRetryable
	}
	if cfg.Retry.Multiplier <= 0 {
		cfg.Retry.Multiplier = 2.0
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: base,
		headers: map[string]string{
			"Accept": "application/json",
		},
		retry:   cfg.Retry,
		maxBody: cfg.MaxResponseBytes,
		logger:  cfg.Logger,
	}
	if cfg.UserAgent != "" {
		c.headers["User-Agent"] = cfg.UserAgent
	}
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}
	if cfg.RateLimitQPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitQPS), burst)
	}
	return c, nil
}

// Request represents an HTTP request to be executed.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
	// MaxResponseBytes overrides the client limit when positive
	MaxResponseBytes int64
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
	Duration   time.Duration
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do executes a request with retry logic. A non-2xx status that survives the
// retries is returned as a Response with a nil error; transport failures are errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.buildURL(req.Path, req.Query)

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	limit := c.maxBody
	if req.MaxResponseBytes > 0 {
		limit = req.MaxResponseBytes
	}

	start := time.Now()
	var lastErr error
	var retryAfter time.Duration
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			if retryAfter > delay {
				delay = retryAfter
				if c.retry.MaxDelay > 0 && delay > c.retry.MaxDelay {
					delay = c.retry.MaxDelay
				}
			}
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating HTTP request: %w", err)
		}
		c.setHeaders(httpReq, req.Headers, body != nil)

		httpResp, err := c.httpClient.Do(httpReq)
		var resp *Response
		if err == nil {
			resp, err = readResponse(httpResp, limit)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ctx.Err())
		}
		retryAfter = 0
		if err == nil {
			resp.Attempts = attempt + 1
			resp.Duration = time.Since(start)
			retryAfter = RetryAfter(resp.Header)
		}

		if attempt < c.retry.MaxRetries && c.retry.ShouldRetry(httpResp, err) {
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("attempt", attempt+1),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			} else {
				fields = append(fields, zap.Int("status", resp.StatusCode))
			}
			c.logger.Warn("retrying request", fields...)
			lastErr = err
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
		return resp, nil
	}

	return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, lastErr)
}

// DoJSON executes the request, requires a 2xx status and decodes the body into out.
// Non-2xx statuses are returned as *StatusError.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Method: req.Method, Path: req.Path, StatusCode: resp.StatusCode, Body: truncate(string(resp.Body), 512)}
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &DecodeError{Method: req.Method, Path: req.Path, Err: err}
	}
	return nil
}

// Download performs a GET and returns the raw body, bounded by limit bytes
func (c *Client) Download(ctx context.Context, path string, headers map[string]string, limit int64) ([]byte, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Headers: headers, MaxResponseBytes: limit})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Body: truncate(string(resp.Body), 512)}
	}
	return resp.Body, nil
}

func readResponse(httpResp *http.Response, limit int64) (*Response, error) {
	defer httpResp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

// buildURL joins the base URL and path; absolute URLs are used as is
func (c *Client) buildURL(path string, query url.Values) string {
	var u *url.URL
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u, _ = url.Parse(path)
	}
	if u == nil {
		ref := *c.baseURL
		ref.Path = strings.TrimRight(ref.Path, "/") + "/" + strings.TrimLeft(path, "/")
		if path == "" {
			ref.Path = c.baseURL.Path
		}
		u = &ref
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) setHeaders(req *http.Request, custom map[string]string, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range custom {
		req.Header.Set(k, v)
	}
}

// calculateBackoff calculates the backoff delay for the given attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retry.RetryDelay) * math.Pow(c.retry.Multiplier, float64(attempt-1))
	if c.retry.MaxDelay > 0 && delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	// jitter of +-20%
	delay += (rand.Float64()*2 - 1) * delay * 0.2
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryAfter parses a Retry-After header expressed in seconds
func RetryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
