package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph/transform"
	hpio "github.com/matzehuels/hyperpipe/pkg/io"
)

func (c *CLI) levelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels <graph.json>",
		Short: "Print the levelization of a graph",
		Long:  `Levels collapses the cycles of a graph and prints the nodes on each level. Collapsed cycles appear as one node named after its members.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := hpio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			clusters, err := transform.CollapseCycles(g)
			if err != nil {
				return err
			}
			levels, err := transform.Levelize(g, nil)
			if err != nil {
				return err
			}

			byLevel := map[int][]string{}
			top := 0
			for _, n := range g.Nodes() {
				l := levels[n]
				byLevel[l] = append(byLevel[l], n.Name)
				top = max(top, l)
			}
			printTitle(fmt.Sprintf("%d levels", top))
			for l := 1; l <= top; l++ {
				printKeyValue(fmt.Sprintf("level %d", l), strings.Join(byLevel[l], ", "))
			}
			if len(clusters) > 0 {
				printDetail("%d cycle(s) collapsed", len(clusters))
			}
			return nil
		},
	}
}

func (c *CLI) sccCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "scc <graph.json>",
		Short: "Print the strongly connected components of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := hpio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			groups := transform.StronglyConnectedComponents(g)

			shown := 0
			for _, group := range groups {
				if len(group) < 2 && !all && !selfLoop(group[0]) {
					continue
				}
				names := make([]string, len(group))
				for i, n := range group {
					names[i] = n.Name
				}
				printKeyValue(fmt.Sprintf("scc %d", shown+1), strings.Join(names, ", "))
				shown++
			}
			if shown == 0 {
				printInfo("No cycles in %d nodes", g.Len())
				return nil
			}
			printDetail("%d of %d components shown", shown, len(groups))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include single-node components without self-loops")
	return cmd
}

func selfLoop(n *hypergraph.Node) bool {
	for _, e := range n.Outputs() {
		if e.HasSink(n) {
			return true
		}
	}
	return false
}
