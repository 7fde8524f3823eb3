// Package loader reads seed catalog files from disk and imports them.
package loader

import (
	"context"
	"fmt"
	"log"
	"os"

	"nutriapp/internal/codec"
	"nutriapp/internal/domain"
	"nutriapp/internal/service"
)

// CatalogImporter merges a catalog into the store
type CatalogImporter interface {
	ImportCatalog(ctx context.Context, catalog *domain.Catalog, source string) (*service.ImportResult, error)
}

// LoadFile parses a catalog file. The format follows the file extension
// (.yaml, .yml or .json).
func LoadFile(path string) (*domain.Catalog, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	catalog, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return catalog, nil
}

// Seeder imports one seed file, at startup and again on every change
type Seeder struct {
	path     string
	importer CatalogImporter
}

// NewSeeder creates a seeder for the file at path
func NewSeeder(path string, importer CatalogImporter) *Seeder {
	return &Seeder{
		path:     path,
		importer: importer,
	}
}

// Path returns the seed file path
func (s *Seeder) Path() string {
	return s.path
}

// Load parses the seed file and imports it
func (s *Seeder) Load(ctx context.Context) (*service.ImportResult, error) {
	catalog, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	return s.importer.ImportCatalog(ctx, catalog, s.path)
}

// Reload is the watcher callback. Errors are logged and the store keeps its
// previous contents.
func (s *Seeder) Reload(ctx context.Context) {
	if _, err := s.Load(ctx); err != nil {
		log.Printf("Failed to reload seed file %s: %v", s.path, err)
	}
}
