// Package models defines core data structures for products, queries, and search results.
package models

// Product is a single catalog entry. Products are loaded once per catalog
// (re)load and never mutated afterwards.
type Product struct {
	ID          string  `json:"id" yaml:"id" db:"id"`
	Name        string  `json:"name" yaml:"name" db:"name"`
	Description string  `json:"description" yaml:"description" db:"description"`
	Price       float64 `json:"price" yaml:"price" db:"price"`
	Category    string  `json:"category" yaml:"category" db:"category"`
	Rating      float64 `json:"rating" yaml:"rating" db:"rating"`
	Image       string  `json:"image,omitempty" yaml:"image,omitempty" db:"image"`
}
