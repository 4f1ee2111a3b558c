// Package config handles store and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents store configuration in .pdfsearch/config.json.
type Config struct {
	PDFRoot string `json:"pdf_root,omitempty"` // Folder holding the source PDF files
}

const (
	// PDFSearchDir is the marker directory for an initialized store.
	PDFSearchDir = ".pdfsearch"
	// ConfigFile is the store config file name.
	ConfigFile = "config.json"
	// IndexDir holds the per-document embedding indexes.
	IndexDir = "index"
	// CacheDir holds rebuildable derived data.
	CacheDir = "cache"
	// CatalogFile is the SQLite document catalog file name.
	CatalogFile = "catalog.db"
)

// StorePath returns the path to the .pdfsearch directory from a root path.
func StorePath(root string) string {
	return filepath.Join(root, PDFSearchDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, PDFSearchDir, ConfigFile)
}

// IndexPath returns the path to the index directory from a root path.
func IndexPath(root string) string {
	return filepath.Join(root, PDFSearchDir, IndexDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, PDFSearchDir, CacheDir)
}

// CatalogPath returns the path to catalog.db from a root path.
func CatalogPath(root string) string {
	return filepath.Join(root, PDFSearchDir, CacheDir, CatalogFile)
}

// IsStore checks if the given path contains an initialized store.
func IsStore(root string) bool {
	info, err := os.Stat(StorePath(root))
	return err == nil && info.IsDir()
}

// FindStore walks up from the given path to find an initialized store.
// Returns the store root path or an error if not found.
func FindStore(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsStore(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a pdfsearch store (no .pdfsearch directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the store at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the store at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Init creates the store layout at the given root.
func Init(root string) error {
	dirs := []string{
		StorePath(root),
		IndexPath(root),
		CachePath(root),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
