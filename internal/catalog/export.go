package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{"ID", "Name", "Category", "Price", "Stock", "Image URL", "Specifications", "Created At"}

// ExportProducts writes the whole catalog as an .xlsx workbook.
func (s *CatalogService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.Repo.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row.AddCell().SetValue(category)
		price, _ := p.Price.Float64()
		row.AddCell().SetFloat(price)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(formatSpecs(p.Specifications))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}

func formatSpecs(specs map[string]any) string {
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, specs[k]))
	}
	return strings.Join(parts, "; ")
}
