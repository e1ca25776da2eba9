package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexfrei/go-netbird/cmd/netbirdctl/subcommand"
)

func main() {
	global := subcommand.NewGlobal()

	rootCmd := &cobra.Command{
		Use:   "netbirdctl",
		Short: "netbirdctl manages NetBird peers, groups and access policies",
		Long: `netbirdctl talks to the NetBird management API.

The API token is taken from --token, the NETBIRD_API_KEY environment
variable or the configuration file, in that order. The default
configuration file is ~/.netbird/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	global.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(subcommand.PeerCmd(global))
	rootCmd.AddCommand(subcommand.GroupCmd(global))
	rootCmd.AddCommand(subcommand.PolicyCmd(global))
	rootCmd.AddCommand(subcommand.VersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(subcommand.ExitCode(err))
	}
}
