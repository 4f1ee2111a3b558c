package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Long: `List all indexed documents from the catalog, with page and
paragraph counts and indexing timestamps.

If the catalog is out of date (for example after copying a store),
run 'pdfsearch rebuild' to regenerate it from the index.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindStore()

	catalog := mustOpenCatalog(root)
	defer catalog.Close()

	entries, err := catalog.List()
	if err != nil {
		exitWithError(ExitError, "listing documents: %v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No documents indexed.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %d pages, %d paragraphs, model %s, indexed %s\n",
				e.DocumentID, e.PageCount, e.UnitCount, e.ModelName,
				formatIndexedAt(e.IndexedAt))
		}
	} else {
		outputJSON(ListResponse{Documents: entries, Total: len(entries)})
	}
	return nil
}
