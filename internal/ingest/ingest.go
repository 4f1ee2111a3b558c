// Package ingest runs the document ingestion pipeline: parse, segment,
// embed, persist.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"time"

	"pdfsearch/internal/embedding"
	"pdfsearch/internal/index"
	"pdfsearch/internal/pdfdoc"
	"pdfsearch/internal/segment"
)

// EmbedBatchSize is the number of units submitted to the encoder per
// batch during ingestion.
const EmbedBatchSize = 16

// DuplicateError indicates ingestion targets a document ID that is
// already indexed. It is never auto-resolved: the caller must re-invoke
// with Options.Replace after an explicit decision.
type DuplicateError struct {
	DocumentID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("document %q is already indexed (pass replace to overwrite)", e.DocumentID)
}

// Options controls a single ingestion.
type Options struct {
	// Replace allows overwriting an existing document index.
	Replace bool
	// Detector overrides the section boundary detector. Nil uses the
	// default weekday-based detector.
	Detector segment.SectionDetector
}

// Stats summarizes a completed ingestion.
type Stats struct {
	DocumentID   string        `json:"document_id"`
	Pages        int           `json:"pages"`
	UnitsIndexed int           `json:"units_indexed"`
	Sections     int           `json:"sections"`
	Replaced     bool          `json:"replaced"`
	Duration     time.Duration `json:"-"`
}

// ProgressReporter receives progress updates during embedding.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// ParseFunc converts a document file into ordered pages.
type ParseFunc func(path string) ([]pdfdoc.Page, error)

// Ingestor runs the ingestion pipeline against one store and encoder.
type Ingestor struct {
	provider embedding.Provider
	store    *index.Store
	catalog  *index.Catalog
	parse    ParseFunc
	progress ProgressReporter
}

// NewIngestor creates an ingestor. The catalog may be nil; catalog
// bookkeeping is then skipped.
func NewIngestor(provider embedding.Provider, store *index.Store, catalog *index.Catalog) *Ingestor {
	return &Ingestor{
		provider: provider,
		store:    store,
		catalog:  catalog,
		parse:    pdfdoc.Extract,
	}
}

// SetProgressReporter sets the progress reporter for the ingestor.
func (ing *Ingestor) SetProgressReporter(reporter ProgressReporter) {
	ing.progress = reporter
}

// SetParser overrides the document parser. Used for alternate document
// sources and in tests.
func (ing *Ingestor) SetParser(parse ParseFunc) {
	ing.parse = parse
}

// Ingest parses the PDF at pdfPath, segments it into units, embeds them,
// and persists the document index under documentID, replacing any prior
// index only when opts.Replace is set.
func (ing *Ingestor) Ingest(ctx context.Context, documentID, pdfPath string, opts Options) (*Stats, error) {
	start := time.Now()

	replaced := ing.store.Exists(documentID)
	if replaced && !opts.Replace {
		return nil, &DuplicateError{DocumentID: documentID}
	}

	pages, err := ing.parse(pdfPath)
	if err != nil {
		return nil, err
	}

	units := segment.Segment(documentID, pages, opts.Detector)

	embedded, err := ing.embedUnits(ctx, units)
	if err != nil {
		return nil, err
	}

	if err := ing.store.Save(documentID, embedded); err != nil {
		return nil, fmt.Errorf("saving document index: %w", err)
	}

	stats := &Stats{
		DocumentID:   documentID,
		Pages:        len(pages),
		UnitsIndexed: len(embedded),
		Sections:     maxSectionIndex(units),
		Replaced:     replaced,
		Duration:     time.Since(start),
	}

	if ing.catalog != nil {
		hash, err := hashFile(pdfPath)
		if err != nil {
			return nil, fmt.Errorf("hashing document: %w", err)
		}
		entry := index.CatalogEntry{
			DocumentID:  documentID,
			ModelName:   ing.provider.ModelName(),
			Dimensions:  ing.provider.Dimensions(),
			PageCount:   len(pages),
			UnitCount:   len(embedded),
			ContentHash: hash,
			IndexedAt:   time.Now().Unix(),
		}
		if err := ing.catalog.Upsert(entry); err != nil {
			return nil, fmt.Errorf("updating catalog: %w", err)
		}
	}

	return stats, nil
}

// Remove deletes a document from the store and catalog. Removing an
// absent document is not an error.
func (ing *Ingestor) Remove(documentID string) error {
	if err := ing.store.Remove(documentID); err != nil {
		return err
	}
	if ing.catalog != nil {
		return ing.catalog.Delete(documentID)
	}
	return nil
}

// embedUnits embeds the units in batches, pairing each unit with its
// vector. Batch-size mismatches from the provider are rejected.
func (ing *Ingestor) embedUnits(ctx context.Context, units []segment.TextUnit) ([]index.EmbeddedUnit, error) {
	embedded := make([]index.EmbeddedUnit, 0, len(units))
	total := len(units)

	for batchStart := 0; batchStart < total; batchStart += EmbedBatchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batchEnd := batchStart + EmbedBatchSize
		if batchEnd > total {
			batchEnd = total
		}
		batch := units[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, u := range batch {
			texts[i] = embedding.EmbedText(u.SectionTitle, u.Text)
		}

		vectors, err := ing.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, &embedding.EncodingError{
				BatchSize: len(batch),
				Err:       fmt.Errorf("got %d vectors for %d texts", len(vectors), len(batch)),
			}
		}

		for i, u := range batch {
			embedded = append(embedded, index.EmbeddedUnit{
				TextUnit:  u,
				Embedding: vectors[i],
			})
		}

		if ing.progress != nil {
			ing.progress.OnProgress(batchEnd, total)
		}
	}

	return embedded, nil
}

// maxSectionIndex returns the highest section index across the units.
func maxSectionIndex(units []segment.TextUnit) int {
	max := 0
	for _, u := range units {
		if u.SectionIndex > max {
			max = u.SectionIndex
		}
	}
	return max
}

// hashFile computes the SHA256 hash of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
