// Package importer loads product rows from spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"MiniCatalog/internal/catalog"
)

var (
	ErrNoSheet       = errors.New("workbook has no sheets")
	ErrEmptySheet    = errors.New("sheet is empty")
	ErrMissingColumn = errors.New("missing column")
)

const (
	colName  = "name"
	colPrice = "price"
	colStock = "stock"
	colImage = "image_url"
)

var headerAliases = map[string]string{
	"name":      colName,
	"title":     colName,
	"product":   colName,
	"price":     colPrice,
	"stock":     colStock,
	"qty":       colStock,
	"quantity":  colStock,
	"image_url": colImage,
	"image":     colImage,
	"image url": colImage,
}

// ParseProducts reads the first sheet of an xlsx workbook. The first row is
// the header; name and price columns are required, stock defaults to 0.
// Rows without a name are skipped.
func ParseProducts(r io.Reader) ([]catalog.ProductInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	cols := mapColumns(rows[0])
	for _, required := range []string{colName, colPrice} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	out := make([]catalog.ProductInput, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2

		name := cell(row, cols, colName)
		if name == "" {
			continue
		}

		price, err := decimal.NewFromString(strings.ReplaceAll(cell(row, cols, colPrice), ",", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad price: %w", line, err)
		}
		if err := catalog.CheckPrice(price); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		in := catalog.ProductInput{Name: name, Price: price}

		if raw := cell(row, cols, colStock); raw != "" {
			if in.Stock, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("row %d: bad stock: %w", line, err)
			}
		}

		if img := cell(row, cols, colImage); img != "" {
			in.ImageURL = &img
		}

		out = append(out, in)
	}

	return out, nil
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
