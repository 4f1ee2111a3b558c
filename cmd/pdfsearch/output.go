package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pdfsearch/internal/index"
	"pdfsearch/internal/search"
)

// Text truncation lengths for human output.
const (
	ResultTextMaxLen = 200 // Search result snippet length
	TitleMaxLen      = 60  // Section title display length
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON)
// and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query     string          `json:"query"`
	Documents []string        `json:"documents,omitempty"`
	Results   []search.Result `json:"results"`
	Total     int             `json:"total"`
	Model     string          `json:"model"`
}

// ListResponse is the response for the list command.
type ListResponse struct {
	Documents []index.CatalogEntry `json:"documents"`
	Total     int                  `json:"total"`
}

// truncate shortens a string for display, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// printSearchResultsHuman prints search results in human-readable format.
func printSearchResultsHuman(results []search.Result) {
	for i, r := range results {
		title := r.SectionTitle
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%d. %s  [%s, p.%d]  distance=%.4f\n",
			i+1, truncate(title, TitleMaxLen), r.DocumentID, r.PageNumber, r.Distance)
		fmt.Printf("   %s\n\n", truncate(r.Text, ResultTextMaxLen))
	}
}

// formatIndexedAt renders a catalog timestamp for human output.
func formatIndexedAt(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}
