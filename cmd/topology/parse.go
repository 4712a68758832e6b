// ABOUTME: The parse subcommand: parses an SZN file and renders its elements.
// ABOUTME: Output is human tables by default, or the full topology as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/HPENetworking/topology-sub000/graph"
	"github.com/HPENetworking/topology-sub000/szn"
)

var (
	parseJSON bool
	parseDOT  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse an SZN topology file and show its elements",
	Long: `Parse an SZN topology description and show its environment, nodes,
ports, and links. Python files (.py) are scanned for a module-level TOPOLOGY
string constant; any other file is parsed whole.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := loadTopologyFile(args[0])
		if err != nil {
			return err
		}
		if parseJSON {
			return printJSON(topo)
		}
		if parseDOT {
			g, err := graph.FromTopology(topo)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			fmt.Print(g.DOT(name))
			return nil
		}
		renderTopology(topo)
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Output the topology as JSON")
	parseCmd.Flags().BoolVar(&parseDOT, "dot", false, "Output the topology as a DOT graph")
	parseCmd.MarkFlagsMutuallyExclusive("json", "dot")
	rootCmd.AddCommand(parseCmd)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTopology prints the topology's collections as tables.
func renderTopology(topo *szn.Topology) {
	if topo.Environment.Len() > 0 {
		t := newTable("Environment")
		t.AppendHeader(table.Row{"Attribute", "Value"})
		for _, key := range topo.Environment.Keys() {
			value, _ := topo.Environment.Get(key)
			t.AppendRow(table.Row{key, szn.FormatValue(value)})
		}
		t.Render()
	}

	nodes := newTable("Nodes")
	nodes.AppendHeader(table.Row{"Name", "Attributes"})
	for _, n := range topo.Nodes {
		nodes.AppendRow(table.Row{n.Name, n.Attributes.String()})
	}
	nodes.Render()

	if len(topo.Ports) > 0 {
		ports := newTable("Ports")
		ports.AppendHeader(table.Row{"Port", "Attributes"})
		for _, p := range topo.Ports {
			ports.AppendRow(table.Row{p.String(), p.Attributes.String()})
		}
		ports.Render()
	}

	if len(topo.Links) > 0 {
		links := newTable("Links")
		links.AppendHeader(table.Row{"Link", "Attributes"})
		for _, l := range topo.Links {
			links.AppendRow(table.Row{l.String(), l.Attributes.String()})
		}
		links.Render()
	}
}

// newTable builds a titled stdout table with the tool's standard style.
func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	fmt.Println()
	return t
}
