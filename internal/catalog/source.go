// Package catalog loads product collections from embedded, file and SQLite
// sources and holds the current collection for the search engine.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/katalog/internal/config"
	"github.com/hyperjump/katalog/internal/models"
)

var (
	// ErrNotFound is returned when a product id is not in the catalog.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned when a product fails validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrDuplicateID is returned when two products share an id.
	ErrDuplicateID = errors.New("duplicate product id")
	// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Source produces the full product list. Load is called on every (re)load.
type Source interface {
	Load(ctx context.Context) ([]*models.Product, error)
	Name() string
}

// NewSource builds the source selected by cfg.
func NewSource(cfg config.CatalogConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		return Embedded(), nil
	case config.SourceFile:
		return NewFileSource(cfg.Path)
	case config.SourceSQLite:
		return NewSQLiteSource(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// StaticSource serves a fixed in-memory product list.
type StaticSource struct {
	name     string
	products []*models.Product
}

// NewStaticSource returns a source that always loads products.
func NewStaticSource(name string, products []*models.Product) *StaticSource {
	return &StaticSource{name: name, products: products}
}

func (s *StaticSource) Load(ctx context.Context) ([]*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*models.Product, len(s.products))
	for i, p := range s.products {
		if p != nil {
			cp := *p
			p = &cp
		}
		out[i] = p
	}
	return out, nil
}

func (s *StaticSource) Name() string { return s.name }
