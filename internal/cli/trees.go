package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "List all trees",
		Run:   runTrees,
	}

	RootCmd.AddCommand(cmd)
}

func runTrees(cmd *cobra.Command, args []string) {
	names, err := openCollections().List()
	if err != nil {
		exitErr("list trees", err)
	}
	printJSON(cmd, names)
}
