// Package cli renders katalog results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperjump/katalog/internal/models"
	"github.com/hyperjump/katalog/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one tab-aligned line per product.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s. An empty string selects OutputText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// EmptyMessage is shown when a search returns no products.
const EmptyMessage = "No products found matching your criteria."

// Writer renders responses. DescriptionLength is the number of description
// characters shown on a product card.
type Writer struct {
	Format            OutputFormat
	DescriptionLength int
}

// WriteSearchResults writes a search response to w.
func (cw Writer) WriteSearchResults(w io.Writer, response *models.SearchResponse) error {
	switch cw.Format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		return writeSearchResultsCompact(w, response)
	default:
		cw.writeSearchResultsText(w, response)
		return nil
	}
}

func (cw Writer) writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.Understanding != "" {
		fmt.Fprintf(w, "Understood: %s\n", response.Understanding)
	}
	fmt.Fprintf(w, "Showing %d of %d products\n\n", response.Total, response.CatalogSize)
	if len(response.Products) == 0 {
		fmt.Fprintln(w, EmptyMessage)
		return
	}
	for _, p := range response.Products {
		cw.writeProduct(w, p)
	}
}

func (cw Writer) writeProduct(w io.Writer, p *models.Product) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "[%s] %s\n", p.ID, p.Name)
	fmt.Fprintf(w, "%s | $%.2f | ⭐ %.1f / 5\n", p.Category, p.Price, p.Rating)
	if p.Description != "" {
		fmt.Fprintf(w, "%s\n", utils.Truncate(p.Description, cw.DescriptionLength))
	}
	fmt.Fprintln(w)
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) error {
	if len(response.Products) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range response.Products {
		fmt.Fprintf(tw, "%s\t$%.2f\t%.1f\t%s\t%s\n", p.ID, p.Price, p.Rating, p.Category, p.Name)
	}
	return tw.Flush()
}

// WriteProduct writes a single product card.
func (cw Writer) WriteProduct(w io.Writer, p *models.Product) error {
	if cw.Format == OutputJSON {
		return writeJSON(w, p)
	}
	cw.writeProduct(w, p)
	return nil
}

// WriteParse writes what was understood from a query.
func (cw Writer) WriteParse(w io.Writer, response *models.ParseResponse) error {
	if cw.Format == OutputJSON {
		return writeJSON(w, response)
	}
	p := response.Parsed
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Query:\t%q\n", p.OriginalQuery)
	fmt.Fprintf(tw, "Category:\t%s\n", orNone(p.Category))
	fmt.Fprintf(tw, "Min price:\t%s\n", money(p.MinPrice))
	fmt.Fprintf(tw, "Max price:\t%s\n", money(p.MaxPrice))
	rating := "-"
	if p.MinRating != nil {
		rating = fmt.Sprintf("%.1f stars", *p.MinRating)
	}
	fmt.Fprintf(tw, "Min rating:\t%s\n", rating)
	fmt.Fprintf(tw, "Keywords:\t%s\n", orNone(fmt.Sprint(p.Keywords)))
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", response.Understanding)
	return err
}

// WriteCategories writes one category per line.
func (cw Writer) WriteCategories(w io.Writer, categories []string) error {
	if cw.Format == OutputJSON {
		return writeJSON(w, map[string][]string{"categories": categories})
	}
	for _, c := range categories {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func orNone(s string) string {
	if s == "" || s == "[]" {
		return "-"
	}
	return s
}
