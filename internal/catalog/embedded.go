package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/katalog/internal/models"
)

//go:embed products.yaml
var embeddedProducts []byte

type embeddedSource struct{}

// Embedded returns the built-in demo catalog of twelve products.
func Embedded() Source { return embeddedSource{} }

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) Load(ctx context.Context) ([]*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var products []*models.Product
	if err := yaml.Unmarshal(embeddedProducts, &products); err != nil {
		return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
	}
	return products, nil
}
