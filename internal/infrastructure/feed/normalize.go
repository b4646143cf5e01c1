package feed

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// StockRules normalizes the distributor's stock column
type StockRules struct {
	// OverflowMarker is the cell text the distributor uses for "more than N", e.g. ">10"
	OverflowMarker string
	// OverflowStock is the quantity advertised for OverflowMarker
	OverflowStock int
	// ReserveThreshold quantities at or below this value are held back as 0
	ReserveThreshold int
}

// DefaultStockRules mirrors the distributor's published conventions
func DefaultStockRules() StockRules {
	return StockRules{OverflowMarker: ">10", OverflowStock: 100, ReserveThreshold: 1}
}

// ParseStock converts a stock cell into a quantity.
// Fractional cells ("5.0") are truncated; negative values become 0.
func (r StockRules) ParseStock(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, fmt.Errorf("empty stock cell")
	}
	if r.OverflowMarker != "" && cell == r.OverflowMarker {
		return r.OverflowStock, nil
	}
	qty, err := decimal.NewFromString(strings.ReplaceAll(cell, " ", ""))
	if err != nil {
		return 0, fmt.Errorf("stock %q is not a number", cell)
	}
	n := int(qty.IntPart())
	if n <= r.ReserveThreshold || n < 0 {
		return 0, nil
	}
	return n, nil
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// ParsePrice keeps the whole-unit part of a price cell: everything before
// the first '.', with every non-digit removed. "5'990.00 руб." becomes 5990.
// Cells without digits yield 0.
func ParsePrice(cell string) decimal.Decimal {
	whole, _, _ := strings.Cut(cell, ".")
	digits := nonDigits.ReplaceAllString(whole, "")
	if digits == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return price
}
