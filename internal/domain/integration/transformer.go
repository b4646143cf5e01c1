package integration

import (
	"context"
	"fmt"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/shared/strategy"
)

// PriceDecimals is the finest price granularity the marketplaces accept
const PriceDecimals int32 = 2

// StockPolicy bounds the stock advertised on the platform
type StockPolicy struct {
	// MaxStock caps the advertised quantity; 0 disables the cap
	MaxStock int
}

// Apply clamps quantity into [0, MaxStock]
func (p StockPolicy) Apply(quantity int) int {
	if quantity < 0 {
		return 0
	}
	if p.MaxStock > 0 && quantity > p.MaxStock {
		return p.MaxStock
	}
	return quantity
}

// Transformer computes the outbound stock and sell price per matched product
type Transformer struct {
	pricing  strategy.PricingStrategy
	stock    StockPolicy
	currency string
}

// NewTransformer creates a transformer from a pricing strategy and a stock policy
func NewTransformer(pricing strategy.PricingStrategy, stock StockPolicy, currency string) *Transformer {
	return &Transformer{
		pricing:  pricing,
		stock:    stock,
		currency: currency,
	}
}

// Transform computes the update payload for one matched record.
// The price is snapped to PriceDecimals before the positivity check so the
// value checked is the value sent. A non-positive base or resulting price
// returns an error wrapping ErrInvalidPrice.
func (t *Transformer) Transform(ctx context.Context, rec MatchedRecord) (UpdatePayload, error) {
	if !rec.BasePrice.IsPositive() {
		return UpdatePayload{}, fmt.Errorf("%w: sku %s has base price %s", ErrInvalidPrice, rec.SKU, rec.BasePrice.String())
	}

	priced, err := t.pricing.CalculatePrice(ctx, strategy.PricingContext{
		SKU:       rec.SKU,
		BasePrice: rec.BasePrice,
		Currency:  t.currency,
	})
	if err != nil {
		return UpdatePayload{}, fmt.Errorf("%w: sku %s: %v", ErrInvalidPrice, rec.SKU, err)
	}
	price := priced.Price.Round(PriceDecimals)
	if !price.IsPositive() {
		return UpdatePayload{}, fmt.Errorf("%w: sku %s priced at %s", ErrInvalidPrice, rec.SKU, priced.Price.String())
	}

	return UpdatePayload{
		PlatformProductID: rec.PlatformProductID,
		SKU:               rec.SKU,
		NewStock:          t.stock.Apply(rec.StockQuantity),
		NewPrice:          price,
	}, nil
}

// TransformResult holds the payloads and the records excluded on the way
type TransformResult struct {
	Payloads []UpdatePayload
	Invalid  []InvalidRecord
}

// TransformAll transforms every record, collecting invalid ones instead of failing
func (t *Transformer) TransformAll(ctx context.Context, records []MatchedRecord) TransformResult {
	result := TransformResult{
		Payloads: make([]UpdatePayload, 0, len(records)),
		Invalid:  make([]InvalidRecord, 0),
	}
	for _, rec := range records {
		payload, err := t.Transform(ctx, rec)
		if err != nil {
			result.Invalid = append(result.Invalid, InvalidRecord{SKU: rec.SKU, Reason: err.Error()})
			continue
		}
		result.Payloads = append(result.Payloads, payload)
	}
	return result
}
