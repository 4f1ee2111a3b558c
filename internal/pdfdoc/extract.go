// Package pdfdoc extracts page-wise plain text from PDF documents.
package pdfdoc

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Page holds the extracted plain text of one PDF page.
type Page struct {
	// Number is the 1-based page number within the document.
	Number int
	// Text is the extracted plain text. Empty if extraction failed for
	// this page; page-level failures do not abort the document.
	Text string
}

// ParseError indicates the document bytes could not be decoded as a PDF.
// It is not retryable; callers surface it verbatim.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing PDF: %v", e.Err)
	}
	return fmt.Sprintf("parsing PDF %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract reads the PDF at path and returns its pages in document order.
// Returns a *ParseError if the file cannot be opened as a PDF.
func Extract(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	return extractPages(r), nil
}

// ExtractReader extracts pages from an in-memory or streamed PDF.
func ExtractReader(r io.ReaderAt, size int64) ([]Page, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	return extractPages(pdfReader), nil
}

func extractPages(r *pdf.Reader) []Page {
	pages := make([]Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep the page slot so numbering stays aligned with the source.
			pages = append(pages, Page{Number: i})
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages
}
