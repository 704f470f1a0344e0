// Package dexscreener fetches trading-pair snapshots for candidate
// identifiers from the DexScreener search API.
package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"trendcast/internal/domain"
)

var json = jsoniter.ConfigFastest

// ErrUnavailable means the upstream could not serve this identifier: every
// attempt failed or the response carried zero pairs. Callers treat it as
// "skip this identifier", never as fatal.
var ErrUnavailable = errors.New("market data unavailable")

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.dexscreener.com"
	DefaultTimeout     = 12 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffMin  = 1 * time.Second
	DefaultBackoffMax  = 2500 * time.Millisecond
	searchPath         = "/latest/dex/search/"
)

// userAgents is the per-attempt header pool. Rotating the agent works around
// naive upstream throttling; it is not a security control.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64)",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X)",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 16_7 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.7 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 13; SM-S918B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Mobile Safari/537.36",
	"Mozilla/5.0 (Linux; Android 12; Pixel 6 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Mobile Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:118.0) Gecko/20100101 Firefox/118.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.0; rv:118.0) Gecko/20100101 Firefox/118.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; Trident/7.0; rv:11.0) like Gecko",
	"Mozilla/5.0 (compatible; MSIE 10.0; Windows NT 6.1; Trident/6.0)",
}

// SleepFunc suspends between retry attempts. Injectable so the backoff shape
// is testable without wall-clock delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client queries the pair-search endpoint with bounded retry and randomized
// backoff. Every call re-fetches; there is no caching.
type Client struct {
	http        *resty.Client
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
	sleep       SleepFunc
	rngMu       sync.Mutex
	rng         *rand.Rand // guarded by rngMu; shared across caller goroutines
	logger      *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithMaxAttempts sets the retry bound.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

// WithBackoff sets the jitter bounds for the inter-attempt delay.
func WithBackoff(min, max time.Duration) Option {
	return func(c *Client) {
		c.backoffMin = min
		c.backoffMax = max
	}
}

// WithSleep replaces the inter-attempt sleep.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSeed fixes the RNG seed used for agent rotation and jitter.
func WithSeed(seed int64) Option {
	return func(c *Client) { c.rng = rand.New(rand.NewSource(seed)) }
}

// New creates a Client for the given base URL ("" for the production API).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		http:        resty.New().SetBaseURL(baseURL).SetTimeout(DefaultTimeout),
		maxAttempts: DefaultMaxAttempts,
		backoffMin:  DefaultBackoffMin,
		backoffMax:  DefaultBackoffMax,
		sleep:       defaultSleep,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse mirrors the upstream body; only the pairs array is consumed.
type searchResponse struct {
	Pairs []domain.Pair `json:"pairs"`
}

// Search looks up pair records for one identifier. It retries transport
// failures and non-success statuses up to the attempt bound with a randomized
// delay in between, then reports ErrUnavailable. A success with zero pairs is
// also ErrUnavailable.
func (c *Client) Search(ctx context.Context, id domain.Candidate) ([]domain.Pair, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.jitter()); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("User-Agent", c.userAgent()).
			SetQueryParam("q", id.String()).
			Get(searchPath)
		if err != nil {
			lastErr = err
			c.logger.WithError(err).WithFields(logrus.Fields{
				"identifier": id.String(),
				"attempt":    attempt,
			}).Warn("market data request failed")
			continue
		}
		if resp.StatusCode() != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode())
			c.logger.WithFields(logrus.Fields{
				"identifier": id.String(),
				"status":     resp.StatusCode(),
				"attempt":    attempt,
			}).Warn("market data bad status")
			continue
		}

		var body searchResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			lastErr = fmt.Errorf("decode response: %w", err)
			continue
		}
		if len(body.Pairs) == 0 {
			return nil, ErrUnavailable
		}
		return body.Pairs, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, c.maxAttempts, lastErr)
}

// FetchImage downloads an image (logo, header) by absolute URL. One attempt:
// a missing image only costs a single record its announcement, so it is not
// worth a retry budget.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent()).
		Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("image download status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// userAgent picks the next header from the pool. One client serves both the
// mention handler and the trending runner, so the RNG is mutex-guarded.
func (c *Client) userAgent() string {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return userAgents[c.rng.Intn(len(userAgents))]
}

// jitter picks a random delay inside the configured bounds.
func (c *Client) jitter() time.Duration {
	if c.backoffMax <= c.backoffMin {
		return c.backoffMin
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.backoffMin + time.Duration(c.rng.Int63n(int64(c.backoffMax-c.backoffMin)))
}
