package subcommand

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	netbird "github.com/lexfrei/go-netbird"
)

// render writes v to w in the requested format. Table output knows the
// resource types; json and yaml marshal whatever they are given.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "table", "":
		return renderTable(w, v)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func renderTable(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	switch resource := v.(type) {
	case []netbird.Peer:
		fmt.Fprintln(tw, "ID\tNAME\tIP\tCONNECTED\tLAST SEEN\tOS\tGROUPS")
		for i := range resource {
			writePeerRow(tw, &resource[i])
		}
	case *netbird.Peer:
		fmt.Fprintln(tw, "ID\tNAME\tIP\tCONNECTED\tLAST SEEN\tOS\tGROUPS")
		writePeerRow(tw, resource)
	case []netbird.Group:
		fmt.Fprintln(tw, "ID\tNAME\tPEERS")
		for i := range resource {
			writeGroupRow(tw, &resource[i])
		}
	case *netbird.Group:
		fmt.Fprintln(tw, "ID\tNAME\tPEERS")
		writeGroupRow(tw, resource)
	case []netbird.Policy:
		fmt.Fprintln(tw, "ID\tNAME\tENABLED\tRULES\tDESCRIPTION")
		for i := range resource {
			writePolicyRow(tw, &resource[i])
		}
	case *netbird.Policy:
		fmt.Fprintln(tw, "ID\tNAME\tENABLED\tRULES\tDESCRIPTION")
		writePolicyRow(tw, resource)
	default:
		return fmt.Errorf("no table rendering for %T", v)
	}

	return tw.Flush()
}

func writePeerRow(w io.Writer, p *netbird.Peer) {
	lastSeen := "never"
	if p.LastSeen != nil {
		lastSeen = p.LastSeen.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\t%s\n",
		p.ID, p.Name, p.IP, p.Connected, lastSeen, p.OS, strings.Join(p.GroupNames(), ","))
}

func writeGroupRow(w io.Writer, g *netbird.Group) {
	fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, g.Name, g.PeersCount)
}

func writePolicyRow(w io.Writer, p *netbird.Policy) {
	fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n",
		p.ID, p.Name, p.Enabled, strconv.Itoa(len(p.Rules)), p.Description)
}
