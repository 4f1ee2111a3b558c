// Package index persists per-document embeddings and serves their union.
package index

import (
	"time"

	"pdfsearch/internal/segment"
)

// EmbeddedUnit is a text unit plus its derived vector.
type EmbeddedUnit struct {
	segment.TextUnit
	// Embedding is the fixed-length vector produced by the encoder from
	// the unit's title and text. Its length is constant across the index.
	Embedding []float32 `json:"embeddings"`
}

// DocumentMeta describes one persisted document index.
type DocumentMeta struct {
	DocumentID string    `json:"file_name"`
	ModelName  string    `json:"model_name"`
	Dimensions int       `json:"dimensions"`
	UnitCount  int       `json:"unit_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// SearchIndex is an immutable in-memory union of all loaded document
// indexes. Units keep their load order so distance ties resolve
// deterministically (first inserted wins).
type SearchIndex struct {
	units []EmbeddedUnit
}

// NewSearchIndex builds a search index over the given units.
func NewSearchIndex(units []EmbeddedUnit) *SearchIndex {
	return &SearchIndex{units: units}
}

// Units returns all units in insertion order. Callers must not modify
// the returned slice.
func (s *SearchIndex) Units() []EmbeddedUnit {
	return s.units
}

// Len returns the number of units in the index.
func (s *SearchIndex) Len() int {
	return len(s.units)
}

// DocumentIDs returns the set of document IDs present in the index.
func (s *SearchIndex) DocumentIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, u := range s.units {
		ids[u.DocumentID] = struct{}{}
	}
	return ids
}

// LoadWarning records a document index that could not be loaded and was
// skipped. Load corruption is contained here; it never fails the load.
type LoadWarning struct {
	DocumentID string
	Err        error
}

func (w LoadWarning) String() string {
	return "skipping document index " + w.DocumentID + ": " + w.Err.Error()
}
