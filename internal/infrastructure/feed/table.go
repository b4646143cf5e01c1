package feed

import (
	"fmt"
	"strings"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// Layout locates the product table inside a sheet
type Layout struct {
	// HeaderRow is the zero-based index of the header row
	HeaderRow   int
	SKUColumn   string
	StockColumn string
	PriceColumn string
}

// DefaultLayout is the distributor's ostatki sheet layout
func DefaultLayout() Layout {
	return Layout{HeaderRow: 17, SKUColumn: "Код", StockColumn: "Количество", PriceColumn: "Цена"}
}

// TableResult is the outcome of reading the product table
type TableResult struct {
	Records     []integration.SourceRecord
	SkippedRows int
}

// ReadTable turns raw sheet rows into source records.
// Rows with an empty SKU are ignored, rows whose stock cannot be parsed and
// repeated SKUs are skipped and counted. The first occurrence of a SKU wins.
func ReadTable(rows [][]string, layout Layout, rules StockRules) (*TableResult, error) {
	if layout.HeaderRow < 0 || layout.HeaderRow >= len(rows) {
		return nil, fmt.Errorf("%w: header row %d not found (sheet has %d rows)", ErrMalformedFeed, layout.HeaderRow, len(rows))
	}

	header := make(map[string]int)
	for i, name := range rows[layout.HeaderRow] {
		name = strings.TrimSpace(name)
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}

	var missing []string
	columns := make([]int, 3)
	for i, name := range []string{layout.SKUColumn, layout.StockColumn, layout.PriceColumn} {
		idx, ok := header[name]
		if !ok {
			missing = append(missing, name)
		}
		columns[i] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformedFeed, strings.Join(missing, ", "))
	}
	skuCol, stockCol, priceCol := columns[0], columns[1], columns[2]

	result := &TableResult{}
	seen := make(map[string]struct{})
	for _, row := range rows[layout.HeaderRow+1:] {
		sku := normalizeSKU(cell(row, skuCol))
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			result.SkippedRows++
			continue
		}
		stock, err := rules.ParseStock(cell(row, stockCol))
		if err != nil {
			result.SkippedRows++
			continue
		}
		seen[sku] = struct{}{}
		result.Records = append(result.Records, integration.SourceRecord{
			SKU:           sku,
			StockQuantity: stock,
			BasePrice:     ParsePrice(cell(row, priceCol)),
		})
	}
	return result, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// normalizeSKU trims the code and drops the ".0" spreadsheets append to numeric cells
func normalizeSKU(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".0") && strings.Trim(s[:len(s)-2], "0123456789") == "" {
		s = s[:len(s)-2]
	}
	return s
}
