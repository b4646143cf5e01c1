package ecommerce

import (
	"github.com/shopspring/decimal"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// formatPrice renders whole prices without a fraction and the rest with two decimals
func formatPrice(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(integration.PriceDecimals)
}
