package subcommand

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	netbird "github.com/lexfrei/go-netbird"
)

// PeerCmd groups the peer subcommands.
func PeerCmd(g *Global) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peer",
		Short: "Manage enrolled devices",
	}
	cmd.AddCommand(peerListCmd(g))
	cmd.AddCommand(peerGetCmd(g))
	cmd.AddCommand(peerUpdateCmd(g))
	cmd.AddCommand(peerDeleteCmd(g))
	return cmd
}

func peerListCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all peers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			peers, err := client.Peers.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, peers)
		},
	}
}

func peerGetCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "get <peer-id>",
		Short: "Show one peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			peer, err := client.Peers.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, peer)
		},
	}
}

// peerUpdateOptions is the command line options for 'peer update'.
type peerUpdateOptions struct {
	name             string
	ssh              bool
	loginExpiration  bool
	approvalRequired bool
}

func peerUpdateCmd(g *Global) *cobra.Command {
	o := peerUpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update <peer-id>",
		Short: "Update peer settings",
		Long: `Update peer settings. Only the flags given on the command line are
sent; everything else is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := o.build(cmd.Flags())
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			peer, err := client.Peers.Update(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, peer)
		},
	}
	o.addFlags(cmd.Flags())
	return cmd
}

func (o *peerUpdateOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.name, "name", "", "New peer name")
	fs.BoolVar(&o.ssh, "ssh", false, "Enable or disable SSH access")
	fs.BoolVar(&o.loginExpiration, "login-expiration", false, "Enable or disable login expiration")
	fs.BoolVar(&o.approvalRequired, "approval-required", false, "Require approval for this peer")
}

// build turns the flags that were actually set into a partial update.
func (o *peerUpdateOptions) build(fs *pflag.FlagSet) netbird.PeerUpdate {
	var update netbird.PeerUpdate
	if fs.Changed("name") {
		update.Name = &o.name
	}
	if fs.Changed("ssh") {
		update.SSHEnabled = &o.ssh
	}
	if fs.Changed("login-expiration") {
		update.LoginExpirationEnabled = &o.loginExpiration
	}
	if fs.Changed("approval-required") {
		update.ApprovalRequired = &o.approvalRequired
	}
	return update
}

func peerDeleteCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <peer-id>",
		Short: "Remove a peer from the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Peers.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Peer %s deleted\n", args[0])
			return nil
		},
	}
}
