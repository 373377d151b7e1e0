package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	maxRetries     = 2
	baseBackoff    = 250 * time.Millisecond
	defaultCacheTT = 5 * time.Minute
)

// Client wraps HTTP fetching with rate limiting, a circuit breaker, retries
// and a read-through cache. One Client per upstream host.
type Client struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   Cache
	ttl     time.Duration
}

// NewClient builds a Client for the named upstream. A nil cache disables
// caching.
func NewClient(name string, timeout time.Duration, cache Cache, ttl time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = defaultCacheTT
	}
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(n string, from, to gobreaker.State) {
			log.Warn().Str("provider", n).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}
	return &Client{
		name:    name,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		breaker: gobreaker.NewCircuitBreaker(settings),
		cache:   cache,
		ttl:     ttl,
	}
}

// GetJSON fetches rawURL with query params and decodes the response body into
// out. Responses are cached by full URL.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}
	if c.cache != nil {
		if b, ok := c.cache.Get(full); ok {
			return json.Unmarshal(b, out)
		}
	}
	body, err := c.fetch(ctx, full)
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(full, body, c.ttl)
	}
	return json.Unmarshal(body, out)
}

func (c *Client) fetch(ctx context.Context, full string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doOnce(ctx, full)
		})
		if err == nil {
			return res.([]byte), nil
		}
		lastErr = err
		if err == gobreaker.ErrOpenState || ctx.Err() != nil {
			break
		}
		log.Debug().Str("provider", c.name).Int("attempt", attempt+1).Err(err).Msg("fetch retry")
	}
	return nil, fmt.Errorf("%s: fetch failed: %w", c.name, lastErr)
}

func (c *Client) doOnce(ctx context.Context, full string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
