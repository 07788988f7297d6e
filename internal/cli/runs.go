package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs <tree>",
		Short: "List ingestion runs, newest first",
		Args:  cobra.ExactArgs(1),
		Run:   runRuns,
	}

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	s, err := openCollections().Open(args[0])
	if err != nil {
		exitErr("open tree", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context())
	if err != nil {
		exitErr("runs", err)
	}

	printJSON(cmd, runs)
}
