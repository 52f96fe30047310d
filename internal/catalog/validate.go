package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/katalog/internal/models"
)

// productNamespace seeds the name-based ids given to products without one.
var productNamespace = uuid.MustParse("6f1d6c3e-4b8a-5d2e-9c71-3a0f5e8b2d41")

// Validate normalises products in place and checks them. Products without an
// id get a UUIDv5 derived from their name, so repeated loads agree.
func Validate(products []*models.Product) error {
	seen := make(map[string]int, len(products))
	for i, p := range products {
		if p == nil {
			return fmt.Errorf("%w: entry %d is empty", ErrInvalidProduct, i)
		}
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Category = strings.TrimSpace(p.Category)

		if p.Name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidProduct, i)
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
			return fmt.Errorf("%w: %q has price %v", ErrInvalidProduct, p.Name, p.Price)
		}
		if math.IsNaN(p.Rating) || p.Rating < 0 || p.Rating > 5 {
			return fmt.Errorf("%w: %q has rating %v outside [0,5]", ErrInvalidProduct, p.Name, p.Rating)
		}
		if p.ID == "" {
			p.ID = ProductID(p.Name)
		}
		if j, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %q at entries %d and %d", ErrDuplicateID, p.ID, j, i)
		}
		seen[p.ID] = i
	}
	return nil
}

// ProductID returns the deterministic id for a product name.
func ProductID(name string) string {
	return uuid.NewSHA1(productNamespace, []byte(strings.ToLower(strings.TrimSpace(name)))).String()
}
