package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdfsearch/internal/index"
	"pdfsearch/internal/pdfdoc"
)

// fakeProvider embeds every text to the same fixed vector.
type fakeProvider struct {
	vector []float32
	short  bool // return one vector too few, simulating a broken encoder
	calls  int
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeProvider) ModelName() string { return "fake-model" }
func (f *fakeProvider) Dimensions() int   { return len(f.vector) }

// testPages is the canned parse result used across tests: one untitled
// page and one titled page with two bullet paragraphs.
var testPages = []pdfdoc.Page{
	{Number: 1, Text: "opening remarks"},
	{Number: 2, Text: "Project Plan\nMonday, January 1, 2024\nfirst item a.\nsecond item b.\n"},
}

func testIngestor(t *testing.T, provider *fakeProvider) (*Ingestor, *index.Store, *index.Catalog, string) {
	t.Helper()
	dir := t.TempDir()

	store := index.NewStore(filepath.Join(dir, "index"), provider.ModelName(), provider.Dimensions())
	catalog, err := index.OpenCatalog(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })

	// The parser is faked, but the catalog hashes the source file.
	pdfPath := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(pdfPath, []byte("placeholder pdf bytes"), 0644); err != nil {
		t.Fatalf("writing placeholder: %v", err)
	}

	ing := NewIngestor(provider, store, catalog)
	ing.SetParser(func(path string) ([]pdfdoc.Page, error) {
		return testPages, nil
	})
	return ing, store, catalog, pdfPath
}

func TestIngest_Pipeline(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}}
	ing, store, catalog, pdfPath := testIngestor(t, provider)

	stats, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if stats.Pages != 2 {
		t.Errorf("pages = %d, want 2", stats.Pages)
	}
	if stats.UnitsIndexed != 3 {
		t.Errorf("units = %d, want 3 (one untitled, two bullets)", stats.UnitsIndexed)
	}
	if stats.Sections != 1 {
		t.Errorf("sections = %d, want 1", stats.Sections)
	}
	if stats.Replaced {
		t.Error("first ingestion reported as replacement")
	}

	idx, warnings, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if idx.Len() != 3 {
		t.Fatalf("persisted units = %d, want 3", idx.Len())
	}
	for _, u := range idx.Units() {
		if u.DocumentID != "notes.pdf" {
			t.Errorf("unit document = %q, want notes.pdf", u.DocumentID)
		}
		if len(u.Embedding) != 3 {
			t.Errorf("embedding length = %d, want 3", len(u.Embedding))
		}
	}

	entry, found, err := catalog.Get("notes.pdf")
	if err != nil {
		t.Fatalf("catalog.Get: %v", err)
	}
	if !found {
		t.Fatal("catalog entry missing after ingest")
	}
	if entry.UnitCount != 3 || entry.PageCount != 2 {
		t.Errorf("catalog entry = %+v, want 3 units over 2 pages", entry)
	}
	if entry.ContentHash == "" {
		t.Error("catalog entry missing content hash")
	}
}

func TestIngest_DuplicateRequiresReplace(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}}
	ing, _, _, pdfPath := testIngestor(t, provider)

	if _, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{}); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	_, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateError", err)
	}
	if dup.DocumentID != "notes.pdf" {
		t.Errorf("duplicate document = %q, want notes.pdf", dup.DocumentID)
	}

	stats, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{Replace: true})
	if err != nil {
		t.Fatalf("Ingest with replace: %v", err)
	}
	if !stats.Replaced {
		t.Error("replacement not reported in stats")
	}
}

func TestIngest_EncoderBatchMismatch(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}, short: true}
	ing, store, _, pdfPath := testIngestor(t, provider)

	_, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{})
	if err == nil {
		t.Fatal("Ingest accepted a short batch")
	}

	// Nothing may be persisted after a failed ingestion.
	if store.Exists("notes.pdf") {
		t.Error("partial index persisted after encoder failure")
	}
}

func TestIngest_ParseErrorPropagates(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}}
	ing, _, _, pdfPath := testIngestor(t, provider)

	wantErr := &pdfdoc.ParseError{Path: pdfPath, Err: errors.New("bad header")}
	ing.SetParser(func(path string) ([]pdfdoc.Page, error) {
		return nil, wantErr
	})

	_, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{})
	var parseErr *pdfdoc.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("err = %v, want ParseError", err)
	}
}

func TestIngest_ReportsProgress(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}}
	ing, _, _, pdfPath := testIngestor(t, provider)

	var updates [][2]int
	ing.SetProgressReporter(ProgressFunc(func(current, total int) {
		updates = append(updates, [2]int{current, total})
	}))

	if _, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(updates) == 0 {
		t.Fatal("no progress updates reported")
	}
	last := updates[len(updates)-1]
	if last[0] != last[1] {
		t.Errorf("final update = %d/%d, want completion", last[0], last[1])
	}
}

func TestIngest_CancelledContext(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}}
	ing, _, _, pdfPath := testIngestor(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ing.Ingest(ctx, "notes.pdf", pdfPath, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	provider := &fakeProvider{vector: []float32{1, 0, 0}}
	ing, store, catalog, pdfPath := testIngestor(t, provider)

	if _, err := ing.Ingest(context.Background(), "notes.pdf", pdfPath, Options{}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if err := ing.Remove("notes.pdf"); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := ing.Remove("notes.pdf"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}

	if store.Exists("notes.pdf") {
		t.Error("document index survived removal")
	}
	_, found, err := catalog.Get("notes.pdf")
	if err != nil {
		t.Fatalf("catalog.Get: %v", err)
	}
	if found {
		t.Error("catalog entry survived removal")
	}
}
