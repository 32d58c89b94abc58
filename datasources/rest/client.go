package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/cube2222/octorest/logs"
)

// Client sends authenticated, rate limited GET requests to a single remote API.
// Requests are never retried.
type Client struct {
	baseURL   *url.URL
	token     string
	userAgent string
	headers   map[string]string

	http    *http.Client
	limiter *rate.Limiter
	cache   *ristretto.Cache
}

type Response struct {
	StatusCode int
	Body       []byte
	// FromCache is set when the remote API reported the cached response as not modified.
	FromCache bool
}

type cachedResponse struct {
	etag string
	body []byte
}

func NewClient(cfg *Config) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse base url")
	}

	client := &Client{
		baseURL:   baseURL,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}

	if cfg.CacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: int64(cfg.CacheSize) * 10,
			MaxCost:     int64(cfg.CacheSize),
			BufferItems: 64,
			// Costs count entries, not bytes.
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "couldn't initialize response cache")
		}
		client.cache = cache
	}

	return client, nil
}

// url expects the path to be escaped already.
func (c *Client) url(path string, params url.Values) string {
	out := c.baseURL.String() + path
	if len(params) > 0 {
		out += "?" + params.Encode()
	}
	return out
}

// Get requests the path with the given query parameters.
// 404 responses are returned as is, other error statuses result in a *RemoteError.
func (c *Client) Get(ctx context.Context, resource, path string, params url.Values) (*Response, error) {
	start := time.Now()
	defer func() {
		RequestDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "couldn't wait for rate limiter")
	}

	target := c.url(path, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var cached *cachedResponse
	if c.cache != nil {
		if value, ok := c.cache.Get(target); ok {
			cached = value.(*cachedResponse)
			req.Header.Set("If-None-Match", cached.etag)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		RequestsTotal.WithLabelValues(resource, "error").Inc()
		return nil, errors.Wrapf(err, "couldn't send request to %s", resource)
	}
	defer res.Body.Close()
	RequestsTotal.WithLabelValues(resource, strconv.Itoa(res.StatusCode)).Inc()

	log := logs.FromContext(ctx).With(slog.String("resource", resource), slog.Int("status", res.StatusCode))

	if res.StatusCode == http.StatusNotModified && cached != nil {
		CacheHitsTotal.WithLabelValues(resource).Inc()
		log.Debug("serving cached response")
		return &Response{
			StatusCode: http.StatusOK,
			Body:       cached.body,
			FromCache:  true,
		}, nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read response body from %s", resource)
	}

	if res.StatusCode == http.StatusNotFound {
		log.Debug("resource not found")
		return &Response{StatusCode: res.StatusCode, Body: body}, nil
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		log.Error("remote request failed", slog.String("body", truncate(string(body), 256)))
		return nil, &RemoteError{
			Resource:   resource,
			StatusCode: res.StatusCode,
			Message:    truncate(strings.TrimSpace(string(body)), 256),
		}
	}

	if etag := res.Header.Get("ETag"); etag != "" && c.cache != nil {
		c.cache.Set(target, &cachedResponse{etag: etag, body: body}, 1)
		c.cache.Wait()
	}

	return &Response{StatusCode: res.StatusCode, Body: body}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
