package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show every snapshot across all timelines",
	Long: `Graph lists the whole history, including snapshots a rewind moved
away from, newest first. Each timeline keeps its own lane color.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		nodes, err := eng.Graph()
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Println("No snapshots yet")
			return nil
		}

		for _, node := range nodes {
			marker := " "
			if node.IsHead {
				marker = colors.HeadMarker("*")
			}
			fmt.Printf("%s %s  %s  %s  %s\n",
				marker,
				colors.SnapshotID(node.ID.Short()),
				colors.Lane(node.Timeline, node.Lane),
				colors.Dim(node.Timestamp.Local().Format("2006-01-02 15:04:05")),
				node.Message)
		}
		return nil
	},
}
