// Package netbird is a typed client for the NetBird management API: peers,
// groups and access policies over JSON/HTTPS with token authentication.
//
// A Client is created once from a resolved configuration and is safe for
// concurrent use. All operations take a context.Context; pass
// context.Background() for plain blocking calls, or a cancellable context to
// abandon an in-flight request.
package netbird

// Version is the library version, reported in the User-Agent header.
const Version = "0.1.0"

const userAgent = "go-netbird/" + Version

// Client is the facade wiring one Transport to all resource services.
type Client struct {
	transport *Transport

	// Peers manages enrolled devices.
	Peers *PeersService
	// Groups manages named peer sets and their membership.
	Groups *GroupsService
	// Policies manages access policies and their rules.
	Policies *PoliciesService
}

// New creates a client for the hosted API with default settings.
// For custom configuration use NewWithConfig; to merge environment and file
// configuration use NewFromSources.
//
// Example:
//
//	client, err := netbird.New("nbp_your-token")
func New(apiKey string) (*Client, error) {
	return NewWithConfig(&Config{APIKey: apiKey})
}

// NewWithConfig creates a client from an explicit configuration. Zero-valued
// fields fall back to the defaults; the API key is required and the base URL
// must be a well-formed absolute URL.
//
// Example:
//
//	client, err := netbird.NewWithConfig(&netbird.Config{
//	    APIKey:  "nbp_your-token",
//	    BaseURL: "https://netbird.example.com",
//	    Timeout: 10 * time.Second,
//	})
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, newConfigurationError("config is required")
	}

	resolved := *cfg
	if resolved.BaseURL == "" {
		resolved.BaseURL = DefaultBaseURL
	}
	if resolved.Timeout == 0 {
		resolved.Timeout = DefaultTimeout
	}
	if resolved.MaxRetries == 0 {
		resolved.MaxRetries = DefaultMaxRetries
	}
	if resolved.RetryDelay == 0 {
		resolved.RetryDelay = DefaultRetryDelay
	}

	if err := resolved.validate(); err != nil {
		return nil, err
	}

	return newClient(&resolved), nil
}

// NewFromSources resolves configuration from the given sources (highest
// precedence first, see ResolveConfig) and creates a client from the result.
//
// Example:
//
//	client, err := netbird.NewFromSources(
//	    netbird.FromEnv(),
//	    netbird.FromFile(netbird.DefaultConfigPath()),
//	)
func NewFromSources(sources ...Source) (*Client, error) {
	cfg, err := ResolveConfig(sources...)
	if err != nil {
		return nil, err
	}
	return newClient(cfg), nil
}

func newClient(cfg *Config) *Client {
	transport := newTransport(cfg)
	return &Client{
		transport: transport,
		Peers:     &PeersService{transport: transport},
		Groups:    &GroupsService{transport: transport},
		Policies:  &PoliciesService{transport: transport},
	}
}

// Close releases idle connections. The client must not be used afterwards.
func (c *Client) Close() {
	c.transport.Close()
}
