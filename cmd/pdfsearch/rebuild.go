package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

// RebuildResponse is the response for the rebuild command.
type RebuildResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Warnings  int    `json:"warnings"`
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the document catalog from the index",
	Long: `Regenerate the SQLite catalog from the persisted document
indexes. The JSONL index is the source of truth; the catalog is a
derived cache and can be rebuilt at any time.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindStore()
	cfg := mustLoadGlobalConfig()
	provider := newProvider(cfg)

	store := openStore(root, provider)
	catalog := mustOpenCatalog(root)
	defer catalog.Close()

	count, warnings, err := catalog.RebuildFromStore(store)
	if err != nil {
		exitWithError(ExitError, "rebuilding catalog: %v", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if humanOutput {
		fmt.Printf("Rebuilt catalog: %d documents", count)
		if len(warnings) > 0 {
			fmt.Printf(" (%d skipped)", len(warnings))
		}
		fmt.Println()
	} else {
		outputJSON(RebuildResponse{
			Status:    "rebuilt",
			Documents: count,
			Warnings:  len(warnings),
		})
	}
	return nil
}
