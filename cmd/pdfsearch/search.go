package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pdfsearch/internal/search"
)

var (
	searchDocs []string
	searchK    int
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVar(&searchDocs, "docs", nil, "Restrict search to these document IDs (repeatable)")
	searchCmd.Flags().IntVarP(&searchK, "k", "k", 0, "Number of nearest neighbors to return (default from config)")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed documents by semantic similarity",
	Long: `Embed the query with the configured encoder and return the k
nearest indexed paragraphs, ranked ascending by distance.

Use --docs to restrict the search to a subset of indexed documents.
An empty index (or a restriction matching nothing) returns zero
results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.TrimSpace(args[0])

	if query == "" {
		exitWithError(ExitError, "Search query cannot be empty")
	}

	root := mustFindStore()
	cfg := mustLoadGlobalConfig()
	provider := newProvider(cfg)
	mustValidateOllama(ctx, provider, false)

	store := openStore(root, provider)
	idx := mustLoadSearchIndex(store)

	k := searchK
	if k <= 0 {
		k = cfg.DefaultK
	}

	var candidates map[string]struct{}
	if len(searchDocs) > 0 {
		candidates = make(map[string]struct{}, len(searchDocs))
		for _, id := range searchDocs {
			candidates[id] = struct{}{}
		}
	}

	results, err := search.Search(ctx, provider, idx, query, candidates, k)
	if err != nil {
		if errors.Is(err, search.ErrEmptyIndex) {
			// No candidates is "zero results", not a failure.
			results = nil
		} else {
			exitWithError(ExitError, "searching: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Search: %q\n", query)
		fmt.Printf("Found %d results (k=%d)\n\n", len(results), k)
		printSearchResultsHuman(results)
	} else {
		if results == nil {
			results = []search.Result{}
		}
		outputJSON(SearchResponse{
			Query:     query,
			Documents: searchDocs,
			Results:   results,
			Total:     len(results),
			Model:     provider.ModelName(),
		})
	}
	return nil
}
