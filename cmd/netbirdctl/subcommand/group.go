package subcommand

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	netbird "github.com/lexfrei/go-netbird"
)

// GroupCmd groups the group subcommands.
func GroupCmd(g *Global) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage peer groups",
	}
	cmd.AddCommand(groupListCmd(g))
	cmd.AddCommand(groupGetCmd(g))
	cmd.AddCommand(groupCreateCmd(g))
	cmd.AddCommand(groupUpdateCmd(g))
	cmd.AddCommand(groupDeleteCmd(g))
	cmd.AddCommand(groupAddPeersCmd(g))
	cmd.AddCommand(groupRemovePeersCmd(g))
	return cmd
}

func groupListCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			groups, err := client.Groups.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, groups)
		},
	}
}

func groupGetCmd(g *Global) *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "get <group-id>",
		Short: "Show one group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			var group *netbird.Group
			if byName {
				group, err = client.Groups.GetByName(cmd.Context(), args[0])
			} else {
				group, err = client.Groups.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, group)
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "Look the group up by name instead of id")
	return cmd
}

func groupCreateCmd(g *Global) *cobra.Command {
	var peers []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			group, err := client.Groups.Create(cmd.Context(), netbird.GroupCreate{
				Name:  args[0],
				Peers: peers,
			})
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, group)
		},
	}
	cmd.Flags().StringSliceVar(&peers, "peers", nil, "Initial member peer ids")
	return cmd
}

func groupUpdateCmd(g *Global) *cobra.Command {
	var (
		name  string
		peers []string
	)
	cmd := &cobra.Command{
		Use:   "update <group-id>",
		Short: "Rename a group or replace its membership",
		Long: `Rename a group or replace its membership. --peers replaces the full
member set; use add-peers and remove-peers for incremental changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update netbird.GroupUpdate
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("peers") {
				update.Peers = &peers
			}

			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			group, err := client.Groups.Update(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, group)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New group name")
	cmd.Flags().StringSliceVar(&peers, "peers", nil, "Full replacement member peer ids")
	return cmd
}

func groupDeleteCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Groups.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Group %s deleted\n", args[0])
			return nil
		},
	}
}

func groupAddPeersCmd(g *Global) *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "add-peers <group-id> <peer-id>...",
		Short: "Add peers to a group",
		Long: `Add peers to a group. Peers already in the group are left alone.
With --create the first argument is a group name; the group is created
when it does not exist yet.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			groupID := args[0]
			if create {
				group, err := client.Groups.CreateOrGet(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				groupID = group.ID
			}

			group, err := client.Groups.AddPeers(cmd.Context(), groupID, args[1:]...)
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, group)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Treat the group argument as a name and create it when absent")
	return cmd
}

func groupRemovePeersCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-peers <group-id> <peer-id>...",
		Short: "Remove peers from a group",
		Long:  `Remove peers from a group. Ids that are not members are ignored.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			group, err := client.Groups.RemovePeers(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, group)
		},
	}
}
