package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pdfsearch/internal/config"
	"pdfsearch/internal/ingest"
	"pdfsearch/internal/pdfdoc"
)

var (
	ingestReplace    bool
	ingestDocID      string
	ingestNoProgress bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "Replace a document that is already indexed")
	ingestCmd.Flags().StringVar(&ingestDocID, "id", "", "Document ID override (single file only; defaults to the file name)")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "Suppress progress output")
}

// IngestResponse is the response for the ingest command.
type IngestResponse struct {
	Ingested []ingest.Stats `json:"ingested"`
	Total    int            `json:"total"`
	Model    string         `json:"model"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf-or-glob>...",
	Short: "Extract, embed, and index PDF documents",
	Long: `Extract text from PDF files, segment it into titled paragraphs,
embed each paragraph with the configured encoder, and persist a
per-document index.

Arguments may be file paths or doublestar glob patterns, e.g.
'notes/**/*.pdf'. A document whose ID is already indexed is rejected
unless --replace is given.

Requires Ollama to be running with the embedding model available.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	paths, err := expandPaths(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(paths) == 0 {
		exitWithError(ExitError, "no PDF files matched")
	}
	if ingestDocID != "" && len(paths) > 1 {
		exitWithError(ExitError, "--id applies to a single file, got %d", len(paths))
	}

	root := mustFindStore()
	cfg := mustLoadGlobalConfig()
	provider := newProvider(cfg)
	mustValidateOllama(ctx, provider, true)

	// Bare file names resolve against the configured PDF folder.
	if storeCfg, err := config.Load(root); err == nil && storeCfg.PDFRoot != "" {
		for i, path := range paths {
			if _, err := os.Stat(path); os.IsNotExist(err) && !filepath.IsAbs(path) {
				paths[i] = filepath.Join(storeCfg.PDFRoot, path)
			}
		}
	}

	store := openStore(root, provider)
	catalog := mustOpenCatalog(root)
	defer catalog.Close()

	ingestor := ingest.NewIngestor(provider, store, catalog)

	var allStats []ingest.Stats
	for _, path := range paths {
		docID := ingestDocID
		if docID == "" {
			docID = filepath.Base(path)
		}

		if humanOutput && !ingestNoProgress {
			fmt.Fprintf(os.Stderr, "Ingesting %s...\n", docID)
			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("embedding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			ingestor.SetProgressReporter(ingest.ProgressFunc(func(current, total int) {
				bar.ChangeMax(total)
				bar.Set(current)
			}))
		} else {
			ingestor.SetProgressReporter(nil)
		}

		stats, err := ingestor.Ingest(ctx, docID, path, ingest.Options{Replace: ingestReplace})
		if err != nil {
			exitIngestError(docID, err)
		}
		allStats = append(allStats, *stats)

		if humanOutput {
			fmt.Printf("Indexed %s: %d pages, %d paragraphs, %d sections (%.1fs)\n",
				stats.DocumentID, stats.Pages, stats.UnitsIndexed, stats.Sections,
				stats.Duration.Seconds())
		}
	}

	if !humanOutput {
		outputJSON(IngestResponse{
			Ingested: allStats,
			Total:    len(allStats),
			Model:    provider.ModelName(),
		})
	}
	return nil
}

// exitIngestError maps pipeline errors to exit codes and messages.
func exitIngestError(docID string, err error) {
	var dup *ingest.DuplicateError
	if errors.As(err, &dup) {
		exitWithError(ExitDuplicate, "document %q is already indexed\n\nRe-run with --replace to overwrite it, or use a different --id.", dup.DocumentID)
	}

	var parseErr *pdfdoc.ParseError
	if errors.As(err, &parseErr) {
		exitWithError(ExitParseError, "%v", parseErr)
	}

	exitWithError(ExitError, "ingesting %s: %v", docID, err)
}

// expandPaths resolves arguments that may be literal paths or doublestar
// glob patterns into a sorted, de-duplicated list of PDF paths.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if strings.EqualFold(filepath.Ext(m), ".pdf") {
				add(m)
			}
		}
	}

	return paths, nil
}
