package subcommand

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	netbird "github.com/lexfrei/go-netbird"
)

// PolicyCmd groups the policy subcommands.
func PolicyCmd(g *Global) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage access policies",
	}
	cmd.AddCommand(policyListCmd(g))
	cmd.AddCommand(policyGetCmd(g))
	cmd.AddCommand(policyCreateCmd(g))
	cmd.AddCommand(policyDeleteCmd(g))
	cmd.AddCommand(policyAllowInternalCmd(g))
	return cmd
}

func policyListCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			policies, err := client.Policies.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, policies)
		},
	}
}

func policyGetCmd(g *Global) *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "get <policy-id>",
		Short: "Show one policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			var policy *netbird.Policy
			if byName {
				policy, err = client.Policies.GetByName(cmd.Context(), args[0])
			} else {
				policy, err = client.Policies.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, policy)
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "Look the policy up by name instead of id")
	return cmd
}

// policyCreateOptions is the command line options for 'policy create'.
type policyCreateOptions struct {
	description    string
	sources        []string
	destinations   []string
	protocol       string
	action         string
	ports          []string
	unidirectional bool
	disabled       bool
}

func policyCreateCmd(g *Global) *cobra.Command {
	o := policyCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a policy with one rule",
		Long: `Create a policy with one rule between the given source and
destination groups. More rules can be added through the API afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			policy, err := client.Policies.Create(cmd.Context(), netbird.PolicyCreate{
				Name:        args[0],
				Description: o.description,
				Enabled:     !o.disabled,
				Rules:       []netbird.PolicyRuleInput{o.rule(args[0])},
			})
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, policy)
		},
	}
	o.addFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("source-groups")
	_ = cmd.MarkFlagRequired("destination-groups")
	return cmd
}

func (o *policyCreateOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.description, "description", "", "Policy description")
	fs.StringSliceVar(&o.sources, "source-groups", nil, "Source group ids")
	fs.StringSliceVar(&o.destinations, "destination-groups", nil, "Destination group ids")
	fs.StringVar(&o.protocol, "protocol", "all", "Protocol to match: all, tcp, udp or icmp")
	fs.StringVar(&o.action, "action", "accept", "Rule action: accept or drop")
	fs.StringSliceVar(&o.ports, "ports", nil, "Destination ports (tcp/udp only)")
	fs.BoolVar(&o.unidirectional, "unidirectional", false, "Match traffic in one direction only")
	fs.BoolVar(&o.disabled, "disabled", false, "Create the policy in disabled state")
}

func (o *policyCreateOptions) rule(name string) netbird.PolicyRuleInput {
	ports := o.ports
	if ports == nil {
		ports = []string{}
	}
	return netbird.PolicyRuleInput{
		Name:          name,
		Description:   o.description,
		Enabled:       !o.disabled,
		Sources:       o.sources,
		Destinations:  o.destinations,
		Bidirectional: !o.unidirectional,
		Protocol:      netbird.Protocol(o.protocol),
		Ports:         ports,
		Action:        netbird.RuleAction(o.action),
	}
}

func policyDeleteCmd(g *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <policy-id>",
		Short: "Delete a policy and all its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Policies.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Policy %s deleted\n", args[0])
			return nil
		},
	}
}

// allowInternalOptions is the command line options for 'policy allow-internal'.
type allowInternalOptions struct {
	policy         string
	description    string
	protocol       string
	action         string
	unidirectional bool
	disabled       bool
}

func policyAllowInternalCmd(g *Global) *cobra.Command {
	o := allowInternalOptions{}
	cmd := &cobra.Command{
		Use:   "allow-internal <group-id>",
		Short: "Allow traffic within a group",
		Long: `Allow traffic within a group. Ensures the named policy contains a
rule whose sources and destinations are both the given group. Repeated
runs update the existing rule instead of adding duplicates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.Client()
			if err != nil {
				return err
			}
			defer client.Close()

			policy, err := client.Policies.EnsureInternalCommunication(cmd.Context(), args[0], o.policy, netbird.InternalCommunicationOptions{
				Description:    o.description,
				Protocol:       netbird.Protocol(o.protocol),
				Action:         netbird.RuleAction(o.action),
				Unidirectional: o.unidirectional,
				Disabled:       o.disabled,
			})
			if err != nil {
				return err
			}
			return render(os.Stdout, g.output, policy)
		},
	}
	o.addFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("policy")
	return cmd
}

func (o *allowInternalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.policy, "policy", "", "Policy name to create or update")
	fs.StringVar(&o.description, "description", "", "Rule description")
	fs.StringVar(&o.protocol, "protocol", "", "Protocol to match: all, tcp, udp or icmp (default all)")
	fs.StringVar(&o.action, "action", "", "Rule action: accept or drop (default accept)")
	fs.BoolVar(&o.unidirectional, "unidirectional", false, "Match traffic in one direction only")
	fs.BoolVar(&o.disabled, "disabled", false, "Write the rule in disabled state")
}
