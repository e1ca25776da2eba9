package subcommand

import (
	"fmt"

	"github.com/spf13/cobra"

	netbird "github.com/lexfrei/go-netbird"
)

// VersionCmd prints the client library version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("netbirdctl %s\n", netbird.Version)
		},
	}
}
