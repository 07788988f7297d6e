package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/graph"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <tree>",
		Short: "Export the person graph as JSON",
		Long:  "Print every person with a parent, partner or child as a JSON array of nodes (id, name, gender, mid, fid, pids).",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	nodes, err := graph.ExportCollection(cmd.Context(), openCollections(), args[0])
	if err != nil {
		exitErr("export", err)
	}
	printJSON(cmd, nodes)
}
