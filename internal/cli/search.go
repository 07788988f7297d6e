package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <tree> <query>",
		Short: "Search individuals by name",
		Long:  "Find individuals whose given or family name contains every word of the query.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args[1:], " ")

	s, err := openCollections().Open(args[0])
	if err != nil {
		exitErr("open tree", err)
	}
	defer s.Close()

	results, err := s.SearchIndividuals(cmd.Context(), store.SearchParams{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return
	}

	printJSON(cmd, results)
}
