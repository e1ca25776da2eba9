// Package subcommand implements the netbirdctl subcommands.
package subcommand

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	netbird "github.com/lexfrei/go-netbird"
	"github.com/lexfrei/go-netbird/observability"
)

// Exit codes reported by netbirdctl, one per error kind so scripts can
// branch on the failure class.
const (
	ExitOK             = 0
	ExitGeneric        = 1
	ExitConfiguration  = 2
	ExitValidation     = 3
	ExitNotFound       = 4
	ExitAuthentication = 5
	ExitRateLimit      = 6
	ExitServer         = 7
	ExitNetwork        = 8
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch netbird.KindOf(err) {
	case netbird.KindConfiguration:
		return ExitConfiguration
	case netbird.KindValidation:
		return ExitValidation
	case netbird.KindNotFound:
		return ExitNotFound
	case netbird.KindAuthentication:
		return ExitAuthentication
	case netbird.KindRateLimit:
		return ExitRateLimit
	case netbird.KindServer:
		return ExitServer
	case netbird.KindNetwork, netbird.KindTimeout:
		return ExitNetwork
	default:
		return ExitGeneric
	}
}

// Global holds the persistent flags shared by every subcommand.
type Global struct {
	configPath string
	apiURL     string
	token      string
	timeout    time.Duration
	output     string
	verbose    bool

	flags *pflag.FlagSet
}

// NewGlobal returns empty global options; AddFlags registers them.
func NewGlobal() *Global {
	return &Global{}
}

// AddFlags registers the persistent flags on the root command.
func (g *Global) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "Path to the configuration file (default ~/.netbird/config.yaml)")
	fs.StringVar(&g.apiURL, "api-url", "", "Management API base URL")
	fs.StringVar(&g.token, "token", "", "API token (overrides NETBIRD_API_KEY)")
	fs.DurationVar(&g.timeout, "timeout", 0, "Per-request timeout")
	fs.StringVarP(&g.output, "output", "o", "table", "Output format: table, json or yaml")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log requests to stderr")
	g.flags = fs
}

// Client builds the API client from flags, environment and file, in that
// precedence order. The resolved values are used as-is: an explicit zero
// (NETBIRD_MAX_RETRIES=0, say) stays zero instead of being rounded back to
// a default.
func (g *Global) Client() (*netbird.Client, error) {
	var p netbird.Partial
	if g.token != "" {
		p.APIKey = &g.token
	}
	if g.apiURL != "" {
		p.BaseURL = &g.apiURL
	}
	if g.flags != nil && g.flags.Changed("timeout") {
		p.Timeout = &g.timeout
	}
	if g.verbose {
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		p.Logger = observability.NewSlogLogger(slog.New(handler))
	}

	path := g.configPath
	if path == "" {
		path = netbird.DefaultConfigPath()
	}

	return netbird.NewFromSources(
		netbird.FromValues(p),
		netbird.FromEnv(),
		netbird.FromFile(path),
	)
}
