package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/fileserver/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/fileserver/internal/storage"
)

const filesPrefix = "/services/files"

// Config defines client behavior
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
	UserAgent string
}

// DefaultConfig returns production-ready client configuration
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      5 * time.Minute,
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		UserAgent:    "fsctl/1.0",
	}
}

// Client talks to a file server over HTTP. Reads and directory creation go
// through a retrying transport. Uploads and deletes are sent once: a replayed
// upload has no body left, and a replayed delete reports NotFound for an
// entry the first attempt already removed. Every file call passes a rate
// limiter and a circuit breaker.
type Client struct {
	api     *resty.Client // retrying
	once    *resty.Client // single attempt
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// New creates a client for the server at cfg.BaseURL
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", cfg.BaseURL)
	}
	baseURL := strings.TrimSuffix(base.String(), "/")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil // Disable logging
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	newResty := func(hc *http.Client) *resty.Client {
		return resty.NewWithClient(hc).
			SetBaseURL(baseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", cfg.UserAgent)
	}

	breaker := resilience.New("fileserver", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isAnswer,
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	return &Client{
		api:     newResty(retryClient.StandardClient()),
		once:    newResty(retryClient.HTTPClient),
		limiter: limiter,
		breaker: breaker,
	}, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// request creates a rate limited request bound to ctx
func (c *Client) request(ctx context.Context, rc *resty.Client) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	return rc.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetError(&errorBody{}), nil
}

// isAnswer reports whether err is a response from a healthy server.
// Domain errors and client mistakes do not count against the breaker.
func isAnswer(err error) bool {
	if err == nil {
		return true
	}
	switch storage.KindOf(err) {
	case storage.KindUnknown, storage.KindIOFailure:
	default:
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code < http.StatusInternalServerError && se.Code != http.StatusTooManyRequests
	}
	return false
}

// filesURL builds the route for op with each path segment escaped
func filesURL(op, p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return filesPrefix + "/" + op + "/" + strings.Join(segments, "/")
}
