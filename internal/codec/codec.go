package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"nutriapp/internal/domain"
)

// Importer interface for importing a catalog from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Catalog, error)
	Format() string
}

// Exporter interface for exporting a catalog to various formats
type Exporter interface {
	Export(catalog *domain.Catalog, w io.Writer) error
	Format() string
}

// Codec both imports and exports one format
type Codec interface {
	Importer
	Exporter
	ContentType() string
}

// Lookup returns the codec for a format name ("yaml", "yml" or "json")
func Lookup(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	}
	return nil, fmt.Errorf("%w: unsupported catalog format %q", domain.ErrInvalid, format)
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: cannot infer catalog format of %s", domain.ErrInvalid, path)
	}
	return Lookup(ext)
}
