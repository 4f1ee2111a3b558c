package index

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog is a SQLite cache of document-level metadata, used for fast
// listing and staleness reporting. The JSONL store is the source of
// truth; the catalog can always be rebuilt from it.
type Catalog struct {
	db *sql.DB
}

// CatalogEntry summarizes one indexed document.
type CatalogEntry struct {
	DocumentID  string `json:"document_id"`
	ModelName   string `json:"model"`
	Dimensions  int    `json:"dimensions"`
	PageCount   int    `json:"pages"`
	UnitCount   int    `json:"units"`
	ContentHash string `json:"content_hash,omitempty"`
	IndexedAt   int64  `json:"indexed_at"`
}

// OpenCatalog opens or creates the catalog database at the given path.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createCatalogSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func createCatalogSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			model_name TEXT NOT NULL,
			dimensions INTEGER NOT NULL,
			page_count INTEGER NOT NULL,
			unit_count INTEGER NOT NULL,
			content_hash TEXT,
			indexed_at INTEGER NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert records or replaces a document's catalog entry.
func (c *Catalog) Upsert(entry CatalogEntry) error {
	_, err := c.db.Exec(`
		INSERT INTO documents (id, model_name, dimensions, page_count, unit_count, content_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model_name = excluded.model_name,
			dimensions = excluded.dimensions,
			page_count = excluded.page_count,
			unit_count = excluded.unit_count,
			content_hash = excluded.content_hash,
			indexed_at = excluded.indexed_at`,
		entry.DocumentID, entry.ModelName, entry.Dimensions,
		entry.PageCount, entry.UnitCount, entry.ContentHash, entry.IndexedAt)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", entry.DocumentID, err)
	}
	return nil
}

// Delete removes a document's catalog entry. Deleting an absent entry is
// not an error.
func (c *Catalog) Delete(documentID string) error {
	if _, err := c.db.Exec("DELETE FROM documents WHERE id = ?", documentID); err != nil {
		return fmt.Errorf("deleting document %s: %w", documentID, err)
	}
	return nil
}

// Get returns the catalog entry for a document, or false if absent.
func (c *Catalog) Get(documentID string) (CatalogEntry, bool, error) {
	row := c.db.QueryRow(`
		SELECT id, model_name, dimensions, page_count, unit_count, content_hash, indexed_at
		FROM documents WHERE id = ?`, documentID)

	var entry CatalogEntry
	var hash sql.NullString
	err := row.Scan(&entry.DocumentID, &entry.ModelName, &entry.Dimensions,
		&entry.PageCount, &entry.UnitCount, &hash, &entry.IndexedAt)
	if err == sql.ErrNoRows {
		return CatalogEntry{}, false, nil
	}
	if err != nil {
		return CatalogEntry{}, false, fmt.Errorf("reading document %s: %w", documentID, err)
	}
	entry.ContentHash = hash.String
	return entry, true, nil
}

// List returns all catalog entries ordered by document ID.
func (c *Catalog) List() ([]CatalogEntry, error) {
	rows, err := c.db.Query(`
		SELECT id, model_name, dimensions, page_count, unit_count, content_hash, indexed_at
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var entry CatalogEntry
		var hash sql.NullString
		if err := rows.Scan(&entry.DocumentID, &entry.ModelName, &entry.Dimensions,
			&entry.PageCount, &entry.UnitCount, &hash, &entry.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		entry.ContentHash = hash.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RebuildFromStore clears the catalog and regenerates it from the JSONL
// store. Page counts are recovered from the units' page numbers; content
// hashes are not recoverable and are left empty.
func (c *Catalog) RebuildFromStore(store *Store) (int, []LoadWarning, error) {
	idx, warnings, err := store.LoadAll()
	if err != nil {
		return 0, nil, fmt.Errorf("loading store: %w", err)
	}

	if _, err := c.db.Exec("DELETE FROM documents"); err != nil {
		return 0, nil, fmt.Errorf("clearing documents table: %w", err)
	}

	type docStats struct {
		units   int
		maxPage int
	}
	stats := make(map[string]*docStats)
	order := make([]string, 0)
	for _, u := range idx.Units() {
		st, ok := stats[u.DocumentID]
		if !ok {
			st = &docStats{}
			stats[u.DocumentID] = st
			order = append(order, u.DocumentID)
		}
		st.units++
		if u.PageNumber > st.maxPage {
			st.maxPage = u.PageNumber
		}
	}

	now := time.Now().Unix()
	for _, id := range order {
		st := stats[id]
		entry := CatalogEntry{
			DocumentID: id,
			ModelName:  store.ModelName(),
			Dimensions: store.Dimensions(),
			PageCount:  st.maxPage,
			UnitCount:  st.units,
			IndexedAt:  now,
		}
		if err := c.Upsert(entry); err != nil {
			return 0, warnings, err
		}
	}

	return len(order), warnings, nil
}
