package catalog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/katalog/internal/models"
)

// decodeExcel reads the first sheet of a workbook. The first row names the
// columns; unknown columns are ignored and "name" is required. Cells are
// read raw so number formats do not leak into prices.
func decodeExcel(content []byte) ([]*models.Product, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("sheet %q has no name column", sheets[0])
	}

	var products []*models.Product
	for n, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		p := &models.Product{
			ID:          cell("id"),
			Name:        cell("name"),
			Description: cell("description"),
			Category:    cell("category"),
			Image:       cell("image"),
		}
		if p.Price, err = parseCell(cell("price")); err != nil {
			return nil, fmt.Errorf("row %d: price: %w", n+2, err)
		}
		if p.Rating, err = parseCell(cell("rating")); err != nil {
			return nil, fmt.Errorf("row %d: rating: %w", n+2, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func parseCell(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
