package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/gedcom"
)

type parentsView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	MotherID *string  `json:"mid"`
	FatherID *string  `json:"fid"`
	Families []string `json:"families"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "parents <tree> <id>",
		Short: "Show an individual's derived parents",
		Long: "Show the mother and father derived from the individual's family membership. " +
			"When several families list the same child, the last ingested one decides; all are listed under families.",
		Args: cobra.ExactArgs(2),
		Run:  runParents,
	}

	RootCmd.AddCommand(cmd)
}

func runParents(cmd *cobra.Command, args []string) {
	id, ok := gedcom.NormalizeID(args[1])
	if !ok {
		exitErr("parents", fmt.Errorf("invalid identifier %q", args[1]))
	}

	s, err := openCollections().Open(args[0])
	if err != nil {
		exitErr("open tree", err)
	}
	defer s.Close()

	ind, err := s.GetIndividual(cmd.Context(), id)
	if err != nil {
		exitErr("parents", err)
	}
	families, err := s.FamiliesOfChild(cmd.Context(), id)
	if err != nil {
		exitErr("parents", err)
	}
	if families == nil {
		families = []string{}
	}

	printJSON(cmd, parentsView{
		ID:       ind.ID,
		Name:     ind.DisplayName(),
		MotherID: ind.MotherID,
		FatherID: ind.FatherID,
		Families: families,
	})
}
