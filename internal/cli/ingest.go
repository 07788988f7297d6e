package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/collection"
	"github.com/rcliao/family-tree/internal/ingest"
)

var acceptedExt = map[string]bool{".ged": true, ".gedcom": true}

func init() {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Load GEDCOM files into trees",
		Long: "Parse GEDCOM files and merge their individuals and families into trees. " +
			"Each file goes to the tree named after it unless --tree is given. " +
			"Re-ingesting the same file adds nothing new.",
		Args: cobra.MinimumNArgs(1),
		Run:  runIngest,
	}

	cmd.Flags().StringP("tree", "t", "", "Tree name for all files (default: each file name without extension)")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	tree, _ := cmd.Flags().GetString("tree")

	files := make([]ingest.File, 0, len(args))
	for _, path := range args {
		if !acceptedExt[strings.ToLower(filepath.Ext(path))] {
			exitErr("ingest", fmt.Errorf("unsupported file %s (want .ged or .gedcom)", path))
		}
		name := tree
		if name == "" {
			name = collection.NameFromFile(path)
		}
		files = append(files, ingest.File{Path: path, Collection: name})
	}

	results, err := ingest.IngestFiles(cmd.Context(), openCollections(), files)
	if err != nil {
		exitErr("ingest", err)
	}

	for _, res := range results {
		if n := len(res.Skipped); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %d malformed record(s) skipped, see \"skipped\" for lines\n", res.Collection, n)
		}
	}
	if len(results) == 1 {
		printJSON(cmd, results[0])
		return
	}
	printJSON(cmd, results)
}
