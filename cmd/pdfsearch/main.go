// Package main provides the pdfsearch CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfsearch/internal/config"
	"pdfsearch/internal/embedding"
	"pdfsearch/internal/index"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdfsearch",
	Short: "Semantic search over PDF documents",
	Long: `pdfsearch ingests PDF documents, embeds their paragraphs with a
pretrained encoder served by Ollama, and answers k-nearest-neighbor
queries over the indexed text.

Documents are expected to follow the OneNote export template: a title
line, a creation date line with an English weekday name, and
bullet-point paragraphs. Other PDFs degrade to a single untitled
section with best-effort paragraph splitting.

Per-document indexes are stored as JSONL under .pdfsearch/index with an
ephemeral SQLite catalog for listings. All commands output JSON by
default for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// .env can supply PDFSEARCH_OLLAMA_URL and friends
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a store.
// Checks global config store_root first, then current working directory.
func getStartingDirectory() (string, int) {
	if root := config.GetStoreRoot(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindStore finds and validates the store root, exits on error.
func mustFindStore() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindStore(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'pdfsearch init' to create a store here.", err)
	}
	return root
}

// mustLoadGlobalConfig loads the global configuration, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return cfg
}

// newProvider builds the Ollama provider from global configuration.
func newProvider(cfg *config.GlobalConfig) *embedding.OllamaProvider {
	var opts []embedding.OllamaOption
	if cfg.OllamaURL != "" {
		opts = append(opts, embedding.WithBaseURL(cfg.OllamaURL))
	}
	if cfg.Model != "" {
		opts = append(opts, embedding.WithModel(cfg.Model))
	}
	if cfg.Dimensions > 0 {
		opts = append(opts, embedding.WithDimensions(cfg.Dimensions))
	}
	return embedding.NewOllamaProvider(opts...)
}

// openStore builds the index store bound to the configured encoder.
func openStore(root string, provider *embedding.OllamaProvider) *index.Store {
	return index.NewStore(config.IndexPath(root), provider.ModelName(), provider.Dimensions())
}

// mustOpenCatalog opens the SQLite document catalog, exits on error.
// The caller is responsible for calling Close() on the returned catalog.
func mustOpenCatalog(root string) *index.Catalog {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	catalog, err := index.OpenCatalog(config.CatalogPath(root))
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	return catalog
}

// mustLoadSearchIndex loads the union of all document indexes, printing
// per-document load warnings to stderr.
func mustLoadSearchIndex(store *index.Store) *index.SearchIndex {
	idx, warnings, err := store.LoadAll()
	if err != nil {
		exitWithError(ExitError, "loading index: %v", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return idx
}

// mustValidateOllama checks that Ollama is running and optionally validates
// the model. If checkModel is true, also verifies the embedding model is
// available.
func mustValidateOllama(ctx context.Context, provider *embedding.OllamaProvider, checkModel bool) {
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitOllamaError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	if checkModel {
		hasModel, err := provider.HasModel(ctx)
		if err != nil {
			exitWithError(ExitError, "checking model availability: %v", err)
		}
		if !hasModel {
			exitWithError(ExitModelNotFound, "embedding model %q not found\n\nRun 'ollama pull %s' to download it.", provider.ModelName(), provider.ModelName())
		}
	}
}
