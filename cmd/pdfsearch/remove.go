package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfsearch/internal/ingest"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <document-id>",
	Short: "Remove a document from the index",
	Long: `Delete the persisted index and catalog entry for a document.
Removing a document that is not indexed is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	docID := args[0]
	root := mustFindStore()
	cfg := mustLoadGlobalConfig()
	provider := newProvider(cfg)

	store := openStore(root, provider)
	catalog := mustOpenCatalog(root)
	defer catalog.Close()

	ingestor := ingest.NewIngestor(provider, store, catalog)
	if err := ingestor.Remove(docID); err != nil {
		exitWithError(ExitError, "removing %s: %v", docID, err)
	}

	if humanOutput {
		fmt.Printf("Removed %s\n", docID)
	} else {
		outputJSON(StatusResponse{Status: "removed", Path: docID})
	}
	return nil
}
