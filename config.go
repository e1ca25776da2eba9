package netbird

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexfrei/go-netbird/observability"
)

const (
	// DefaultBaseURL is the hosted NetBird management API.
	DefaultBaseURL = "https://api.netbird.io"

	// DefaultTimeout is the per-attempt request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the exponential backoff unit.
	DefaultRetryDelay = 1 * time.Second
)

// Environment variables read by FromEnv.
const (
	EnvAPIKey     = "NETBIRD_API_KEY"
	EnvAPIURL     = "NETBIRD_API_URL"
	EnvTimeout    = "NETBIRD_TIMEOUT"
	EnvMaxRetries = "NETBIRD_MAX_RETRIES"
	EnvRetryDelay = "NETBIRD_RETRY_DELAY"
)

// Config holds the resolved client configuration. It is built once per
// client and immutable afterwards.
type Config struct {
	// APIKey is the personal access token. Required.
	APIKey string

	// BaseURL is the management API base URL (defaults to the hosted API).
	BaseURL string

	// Timeout bounds each request attempt. Retried calls may take up to
	// (MaxRetries+1) * Timeout plus backoff in total.
	Timeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// RetryDelay is the exponential backoff unit: retry n waits
	// RetryDelay * 2^n, unless a Retry-After hint overrides it.
	RetryDelay time.Duration

	// RateLimitPerMinute throttles outgoing requests client-side.
	// Zero disables throttling.
	RateLimitPerMinute int

	// InsecureSkipVerify disables TLS verification, for self-hosted
	// management servers with self-signed certificates.
	InsecureSkipVerify bool

	// HTTPClient overrides the underlying HTTP client (optional).
	HTTPClient *http.Client

	// Logger receives structured client logs (optional, noop if nil).
	Logger observability.Logger

	// Metrics receives client metrics (optional, noop if nil).
	Metrics observability.MetricsRecorder
}

// Partial is a partially-specified configuration. Nil fields fall through to
// the next source in precedence order.
type Partial struct {
	APIKey             *string
	BaseURL            *string
	Timeout            *time.Duration
	MaxRetries         *int
	RetryDelay         *time.Duration
	RateLimitPerMinute *int
	InsecureSkipVerify *bool

	// Logger and Metrics can only come from code, never from environment
	// or file sources; FromValues is the place to supply them.
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// Source supplies one layer of partial configuration.
type Source func() (Partial, error)

// FromValues returns a source supplying the given explicit values.
func FromValues(p Partial) Source {
	return func() (Partial, error) { return p, nil }
}

// FromEnv returns a source reading the NETBIRD_* environment variables.
// Timeout and retry delay are specified in seconds (fractions allowed for
// the delay).
func FromEnv() Source {
	return func() (Partial, error) {
		var p Partial

		if v, ok := os.LookupEnv(EnvAPIKey); ok {
			p.APIKey = &v
		}
		if v, ok := os.LookupEnv(EnvAPIURL); ok {
			p.BaseURL = &v
		}
		if v, ok := os.LookupEnv(EnvTimeout); ok {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return Partial{}, newConfigurationError("invalid integer value for %s: %q", EnvTimeout, v)
			}
			d := time.Duration(seconds) * time.Second
			p.Timeout = &d
		}
		if v, ok := os.LookupEnv(EnvMaxRetries); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Partial{}, newConfigurationError("invalid integer value for %s: %q", EnvMaxRetries, v)
			}
			p.MaxRetries = &n
		}
		if v, ok := os.LookupEnv(EnvRetryDelay); ok {
			seconds, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Partial{}, newConfigurationError("invalid number value for %s: %q", EnvRetryDelay, v)
			}
			d := time.Duration(seconds * float64(time.Second))
			p.RetryDelay = &d
		}

		return p, nil
	}
}

// filePayload is the key-value shape of a configuration file. Durations are
// given in seconds, matching the environment variables.
type filePayload struct {
	APIKey             *string  `yaml:"api_key" json:"api_key"`
	APIURL             *string  `yaml:"api_url" json:"api_url"`
	Timeout            *int     `yaml:"timeout" json:"timeout"`
	MaxRetries         *int     `yaml:"max_retries" json:"max_retries"`
	RetryDelay         *float64 `yaml:"retry_delay" json:"retry_delay"`
	RateLimitPerMinute *int     `yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
	InsecureSkipVerify *bool    `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// FromFile returns a source reading a YAML or JSON configuration file.
// A missing file contributes nothing; a present but unparsable file is a
// configuration error.
func FromFile(path string) Source {
	return func() (Partial, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Partial{}, nil
			}
			return Partial{}, newConfigurationError("failed to read configuration file %s: %v", path, err)
		}

		var payload filePayload
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			err = json.Unmarshal(data, &payload)
		default:
			err = yaml.Unmarshal(data, &payload)
		}
		if err != nil {
			return Partial{}, newConfigurationError("failed to parse configuration file %s: %v", path, err)
		}

		p := Partial{
			APIKey:             payload.APIKey,
			BaseURL:            payload.APIURL,
			MaxRetries:         payload.MaxRetries,
			RateLimitPerMinute: payload.RateLimitPerMinute,
			InsecureSkipVerify: payload.InsecureSkipVerify,
		}
		if payload.Timeout != nil {
			d := time.Duration(*payload.Timeout) * time.Second
			p.Timeout = &d
		}
		if payload.RetryDelay != nil {
			d := time.Duration(*payload.RetryDelay * float64(time.Second))
			p.RetryDelay = &d
		}

		return p, nil
	}
}

// DefaultConfigPath returns the conventional configuration file location:
// ~/.netbird/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".netbird", "config.yaml")
	}
	return filepath.Join(home, ".netbird", "config.yaml")
}

// ResolveConfig folds the given sources into one Config. Sources are ordered
// highest precedence first; each field independently takes the first value
// any source supplies, falling through to the built-in defaults. Construction
// fails with a configuration error when the API key is absent after full
// resolution or the base URL is not a well-formed absolute URL.
func ResolveConfig(sources ...Source) (*Config, error) {
	var merged Partial
	for _, source := range sources {
		p, err := source()
		if err != nil {
			return nil, err
		}
		merged = merged.merge(p)
	}

	cfg := &Config{
		APIKey:     stringOr(merged.APIKey, ""),
		BaseURL:    stringOr(merged.BaseURL, DefaultBaseURL),
		Timeout:    durationOr(merged.Timeout, DefaultTimeout),
		MaxRetries: intOr(merged.MaxRetries, DefaultMaxRetries),
		RetryDelay: durationOr(merged.RetryDelay, DefaultRetryDelay),
	}
	if merged.RateLimitPerMinute != nil {
		cfg.RateLimitPerMinute = *merged.RateLimitPerMinute
	}
	if merged.InsecureSkipVerify != nil {
		cfg.InsecureSkipVerify = *merged.InsecureSkipVerify
	}
	cfg.Logger = merged.Logger
	cfg.Metrics = merged.Metrics

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// merge keeps p's fields and fills gaps from lower.
func (p Partial) merge(lower Partial) Partial {
	if p.APIKey == nil {
		p.APIKey = lower.APIKey
	}
	if p.BaseURL == nil {
		p.BaseURL = lower.BaseURL
	}
	if p.Timeout == nil {
		p.Timeout = lower.Timeout
	}
	if p.MaxRetries == nil {
		p.MaxRetries = lower.MaxRetries
	}
	if p.RetryDelay == nil {
		p.RetryDelay = lower.RetryDelay
	}
	if p.RateLimitPerMinute == nil {
		p.RateLimitPerMinute = lower.RateLimitPerMinute
	}
	if p.InsecureSkipVerify == nil {
		p.InsecureSkipVerify = lower.InsecureSkipVerify
	}
	if p.Logger == nil {
		p.Logger = lower.Logger
	}
	if p.Metrics == nil {
		p.Metrics = lower.Metrics
	}
	return p
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return newConfigurationError("API key is required")
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return newConfigurationError("invalid API URL: %q", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return newConfigurationError("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return newConfigurationError("max retries must be non-negative")
	}
	if c.RetryDelay < 0 {
		return newConfigurationError("retry delay must be non-negative")
	}
	if c.RateLimitPerMinute < 0 {
		return newConfigurationError("rate limit must be non-negative")
	}

	return nil
}

func stringOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func durationOr(v *time.Duration, fallback time.Duration) time.Duration {
	if v != nil {
		return *v
	}
	return fallback
}
