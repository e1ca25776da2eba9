package netbird

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexfrei/go-netbird/observability"
)

func strptr(s string) *string               { return &s }
func intptr(n int) *int                     { return &n }
func durptr(d time.Duration) *time.Duration { return &d }

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestResolveConfigPrecedence(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvTimeout, "10")
	t.Setenv(EnvMaxRetries, "5")

	path := writeConfigFile(t, "config.yaml", `
api_key: file-key
api_url: https://file.example.com
timeout: 20
max_retries: 7
retry_delay: 2.5
`)

	explicit := Partial{
		APIKey:  strptr("explicit-key"),
		Timeout: durptr(45 * time.Second),
	}

	cfg, err := ResolveConfig(FromValues(explicit), FromEnv(), FromFile(path))
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	// Explicit wins where supplied.
	if cfg.APIKey != "explicit-key" {
		t.Errorf("APIKey = %q, want explicit value", cfg.APIKey)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want explicit 45s", cfg.Timeout)
	}
	// Env wins over file where explicit is silent.
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want env value 5", cfg.MaxRetries)
	}
	// File wins over defaults where explicit and env are silent.
	if cfg.RetryDelay != 2500*time.Millisecond {
		t.Errorf("RetryDelay = %v, want file value 2.5s", cfg.RetryDelay)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := ResolveConfig(FromValues(Partial{APIKey: strptr("nb-token")}))
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if cfg.RetryDelay != DefaultRetryDelay {
		t.Errorf("RetryDelay = %v, want %v", cfg.RetryDelay, DefaultRetryDelay)
	}
	if cfg.RateLimitPerMinute != 0 {
		t.Errorf("RateLimitPerMinute = %d, want 0 (disabled)", cfg.RateLimitPerMinute)
	}
}

func TestResolveConfigExplicitZeroRetries(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvMaxRetries, "0")
	t.Setenv(EnvRetryDelay, "0")

	cfg, err := ResolveConfig(FromEnv())
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want explicit 0 kept", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 0 {
		t.Errorf("RetryDelay = %v, want explicit 0 kept", cfg.RetryDelay)
	}
}

func TestResolveConfigCarriesHooks(t *testing.T) {
	logger := observability.NoopLogger()
	metrics := observability.NoopMetricsRecorder()

	cfg, err := ResolveConfig(FromValues(Partial{
		APIKey:  strptr("nb-token"),
		Logger:  logger,
		Metrics: metrics,
	}))
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if cfg.Logger == nil {
		t.Error("Logger not carried through resolution")
	}
	if cfg.Metrics == nil {
		t.Error("Metrics not carried through resolution")
	}
}

func TestResolveConfigMissingAPIKey(t *testing.T) {
	_, err := ResolveConfig(FromValues(Partial{BaseURL: strptr("https://api.example.com")}))
	if !IsConfiguration(err) {
		t.Fatalf("ResolveConfig without API key: got %v, want configuration error", err)
	}
}

func TestResolveConfigInvalidBaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "no scheme", url: "api.netbird.io"},
		{name: "empty host", url: "https://"},
		{name: "garbage", url: "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveConfig(FromValues(Partial{
				APIKey:  strptr("nb-token"),
				BaseURL: strptr(tt.url),
			}))
			if !IsConfiguration(err) {
				t.Errorf("ResolveConfig(%q): got %v, want configuration error", tt.url, err)
			}
		})
	}
}

func TestResolveConfigRejectsNegativeValues(t *testing.T) {
	tests := []struct {
		name    string
		partial Partial
	}{
		{name: "negative timeout", partial: Partial{APIKey: strptr("k"), Timeout: durptr(-time.Second)}},
		{name: "negative retries", partial: Partial{APIKey: strptr("k"), MaxRetries: intptr(-1)}},
		{name: "negative delay", partial: Partial{APIKey: strptr("k"), RetryDelay: durptr(-time.Second)}},
		{name: "negative rate limit", partial: Partial{APIKey: strptr("k"), RateLimitPerMinute: intptr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResolveConfig(FromValues(tt.partial)); !IsConfiguration(err) {
				t.Errorf("got %v, want configuration error", err)
			}
		})
	}
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvTimeout, "soon")

	if _, err := ResolveConfig(FromEnv()); !IsConfiguration(err) {
		t.Fatalf("malformed %s: got %v, want configuration error", EnvTimeout, err)
	}
}

func TestFromFileMissingContributesNothing(t *testing.T) {
	cfg, err := ResolveConfig(
		FromValues(Partial{APIKey: strptr("nb-token")}),
		FromFile(filepath.Join(t.TempDir(), "absent.yaml")),
	)
	if err != nil {
		t.Fatalf("ResolveConfig with absent file: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
}

func TestFromFileUnparsable(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "api_key: [unclosed")

	if _, err := ResolveConfig(FromFile(path)); !IsConfiguration(err) {
		t.Fatalf("unparsable file: got %v, want configuration error", err)
	}
}

func TestFromFileJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"api_key":"json-key","timeout":15,"retry_delay":0.5,"rate_limit_per_minute":120}`)

	cfg, err := ResolveConfig(FromFile(path))
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if cfg.APIKey != "json-key" {
		t.Errorf("APIKey = %q, want json-key", cfg.APIKey)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 500ms", cfg.RetryDelay)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Errorf("RateLimitPerMinute = %d, want 120", cfg.RateLimitPerMinute)
	}
}
