package rest

import (
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/config"
)

type Config struct {
	BaseURL           string
	Token             string
	PageSize          int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	UserAgent         string
	// CacheSize is the number of responses kept for conditional requests, 0 disables the cache.
	CacheSize int
	// Headers are sent with every request. They can't override the Authorization header.
	Headers map[string]string
	// Tables restricts the exposed tables, all of them are exposed if it's empty.
	Tables []string
}

const DefaultUserAgent = "octorest"

// ConfigFromMap reads the connector configuration. The token may be given directly,
// or through the environment variable named by tokenEnv.
func ConfigFromMap(cfg map[string]interface{}, defaultBaseURL string) (*Config, error) {
	var out Config
	var err error

	out.BaseURL, err = config.GetString(cfg, "baseURL", config.WithDefault(defaultBaseURL))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get baseURL")
	}
	out.Token, err = config.GetString(cfg, "token", config.WithDefault(""))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get token")
	}
	tokenEnv, err := config.GetString(cfg, "tokenEnv", config.WithDefault(""))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get tokenEnv")
	}
	if out.Token == "" && tokenEnv != "" {
		out.Token = os.Getenv(tokenEnv)
	}
	out.PageSize, err = config.GetInt(cfg, "pageSize", config.WithDefault(100))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get pageSize")
	}
	out.RequestsPerSecond, err = config.GetFloat64(cfg, "requestsPerSecond", config.WithDefault(10.0))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get requestsPerSecond")
	}
	out.Burst, err = config.GetInt(cfg, "burst", config.WithDefault(1))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get burst")
	}
	out.Timeout, err = config.GetDuration(cfg, "timeout", config.WithDefault(30*time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get timeout")
	}
	out.UserAgent, err = config.GetString(cfg, "userAgent", config.WithDefault(DefaultUserAgent))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get userAgent")
	}
	out.CacheSize, err = config.GetInt(cfg, "cacheSize", config.WithDefault(0))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get cacheSize")
	}

	out.Headers, err = config.GetStringMap(cfg, "headers", config.WithDefault(map[string]string(nil)))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get headers")
	}
	out.Tables, err = config.GetStringList(cfg, "tables", config.WithDefault([]string(nil)))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get tables")
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Wrapf(err, "invalid baseURL %s", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("baseURL must be http or https, got %s", c.BaseURL)
	}
	if c.PageSize <= 0 {
		return errors.Errorf("pageSize must be positive, got %d", c.PageSize)
	}
	if c.RequestsPerSecond <= 0 {
		return errors.Errorf("requestsPerSecond must be positive, got %v", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return errors.Errorf("burst must be positive, got %d", c.Burst)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.CacheSize < 0 {
		return errors.Errorf("cacheSize can't be negative, got %d", c.CacheSize)
	}
	if _, ok := c.Headers["Authorization"]; ok {
		return errors.New("the Authorization header is set through token or tokenEnv")
	}
	return nil
}
