package index

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MetaFileName holds per-document index metadata.
	MetaFileName = "meta.json"

	// UnitsFileName holds the document's embedded units, one JSON object
	// per line.
	UnitsFileName = "units.jsonl"

	// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL
	// lines. Embedding vectors make lines long: 1024-dimension float
	// vectors serialize to roughly 12KB, so 4MB leaves ample headroom.
	MaxJSONLLineCapacity = 4 * 1024 * 1024

	// tmpSuffix marks in-progress document directories. LoadAll ignores
	// them and Save cleans them up.
	tmpSuffix = ".tmp"
)

// Store persists one directory per document under root. It is bound to a
// single encoder (model name and dimensions); saving or loading vectors
// from a different encoder is rejected.
type Store struct {
	root       string
	modelName  string
	dimensions int
}

// NewStore creates a store rooted at the given directory.
func NewStore(root, modelName string, dimensions int) *Store {
	return &Store{root: root, modelName: modelName, dimensions: dimensions}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// ModelName returns the encoder the store is bound to.
func (s *Store) ModelName() string { return s.modelName }

// Dimensions returns the vector dimensionality the store is bound to.
func (s *Store) Dimensions() int { return s.dimensions }

// docPath returns the directory for a document index.
func (s *Store) docPath(documentID string) string {
	return filepath.Join(s.root, documentID)
}

// validateDocumentID rejects IDs that would escape the store root.
func validateDocumentID(documentID string) error {
	if documentID == "" {
		return errors.New("document ID is empty")
	}
	if strings.ContainsAny(documentID, `/\`) || documentID == "." || documentID == ".." {
		return fmt.Errorf("invalid document ID %q", documentID)
	}
	return nil
}

// Save persists the full unit set for a document, replacing any prior
// set. The new index is written to a temporary sibling directory and
// swapped into place, so a concurrent LoadAll never observes a partially
// written document.
func (s *Store) Save(documentID string, units []EmbeddedUnit) error {
	if err := validateDocumentID(documentID); err != nil {
		return err
	}

	for i, u := range units {
		if len(u.Embedding) != s.dimensions {
			return fmt.Errorf("unit %d: embedding dimension mismatch: got %d, want %d",
				i, len(u.Embedding), s.dimensions)
		}
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("creating index root: %w", err)
	}

	tmpDir := s.docPath(documentID) + tmpSuffix
	if err := os.RemoveAll(tmpDir); err != nil {
		return fmt.Errorf("clearing stale temp dir: %w", err)
	}
	if err := os.Mkdir(tmpDir, 0755); err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}

	if err := s.writeDocument(tmpDir, documentID, units); err != nil {
		os.RemoveAll(tmpDir)
		return err
	}

	finalDir := s.docPath(documentID)
	if err := os.RemoveAll(finalDir); err != nil {
		os.RemoveAll(tmpDir)
		return fmt.Errorf("removing previous index: %w", err)
	}
	if err := os.Rename(tmpDir, finalDir); err != nil {
		os.RemoveAll(tmpDir)
		return fmt.Errorf("publishing index: %w", err)
	}

	return nil
}

// writeDocument writes meta.json and units.jsonl into dir.
func (s *Store) writeDocument(dir, documentID string, units []EmbeddedUnit) error {
	meta := DocumentMeta{
		DocumentID: documentID,
		ModelName:  s.modelName,
		Dimensions: s.dimensions,
		UnitCount:  len(units),
		CreatedAt:  time.Now().UTC(),
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFileName), metaData, 0644); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, UnitsFileName))
	if err != nil {
		return fmt.Errorf("creating units file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, u := range units {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encoding unit %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing unit %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing units file: %w", err)
	}

	return f.Sync()
}

// LoadAll reads every persisted document index and returns their union.
// Corrupt or encoder-mismatched documents are skipped with a warning;
// they never fail the whole load. Documents are loaded in sorted ID order
// so the snapshot's insertion order is stable across runs.
func (s *Store) LoadAll() (*SearchIndex, []LoadWarning, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSearchIndex(nil), nil, nil
		}
		return nil, nil, fmt.Errorf("reading index root: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasSuffix(entry.Name(), tmpSuffix) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)

	var units []EmbeddedUnit
	var warnings []LoadWarning
	for _, id := range ids {
		docUnits, err := s.loadDocument(id)
		if err != nil {
			warnings = append(warnings, LoadWarning{DocumentID: id, Err: err})
			continue
		}
		units = append(units, docUnits...)
	}

	return NewSearchIndex(units), warnings, nil
}

// loadDocument reads one document index, validating it against the
// store's encoder.
func (s *Store) loadDocument(documentID string) ([]EmbeddedUnit, error) {
	dir := s.docPath(documentID)

	metaData, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta DocumentMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta: %w", err)
	}
	if meta.ModelName != s.modelName || meta.Dimensions != s.dimensions {
		return nil, fmt.Errorf("encoder mismatch: index built with %s (%d dims), store expects %s (%d dims)",
			meta.ModelName, meta.Dimensions, s.modelName, s.dimensions)
	}

	f, err := os.Open(filepath.Join(dir, UnitsFileName))
	if err != nil {
		return nil, fmt.Errorf("opening units file: %w", err)
	}
	defer f.Close()

	var units []EmbeddedUnit
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var unit EmbeddedUnit
		if err := json.Unmarshal(line, &unit); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if len(unit.Embedding) != s.dimensions {
			return nil, fmt.Errorf("line %d: embedding dimension mismatch: got %d, want %d",
				lineNum, len(unit.Embedding), s.dimensions)
		}
		units = append(units, unit)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading units file: %w", err)
	}

	if len(units) != meta.UnitCount {
		return nil, fmt.Errorf("truncated index: meta records %d units, file has %d", meta.UnitCount, len(units))
	}

	return units, nil
}

// Remove deletes the persisted index for a document. Removing an absent
// document is not an error.
func (s *Store) Remove(documentID string) error {
	if err := validateDocumentID(documentID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.docPath(documentID)); err != nil {
		return fmt.Errorf("removing document index: %w", err)
	}
	return nil
}

// ListDocumentIDs returns the IDs of all loadable document indexes,
// derived from LoadAll so corrupt entries are excluded.
func (s *Store) ListDocumentIDs() (map[string]struct{}, error) {
	idx, _, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	return idx.DocumentIDs(), nil
}

// Exists reports whether a document index directory is present, without
// validating its contents. Used for fast duplicate detection.
func (s *Store) Exists(documentID string) bool {
	info, err := os.Stat(s.docPath(documentID))
	return err == nil && info.IsDir()
}
