package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/katalog/internal/models"
)

// document is the wrapped file layout: {"products": [...]}.
type document struct {
	Products []*models.Product `json:"products" yaml:"products"`
}

// FileSource reads a catalog file. The format follows the extension.
type FileSource struct {
	path   string
	decode func([]byte) ([]*models.Product, error)
}

// NewFileSource returns a source for path. Supported extensions are
// .yaml, .yml, .json and .xlsx.
func NewFileSource(path string) (*FileSource, error) {
	var decode func([]byte) ([]*models.Product, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decode = decodeYAML
	case ".json":
		decode = decodeJSON
	case ".xlsx":
		decode = decodeExcel
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return &FileSource{path: path, decode: decode}, nil
}

// Path returns the catalog file path.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Load(ctx context.Context) ([]*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	products, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}
	return products, nil
}

// Both decoders accept a bare list or a {products: [...]} wrapper.
func decodeYAML(data []byte) ([]*models.Product, error) {
	var list []*models.Product
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func decodeJSON(data []byte) ([]*models.Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []*models.Product
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Products, nil
}
