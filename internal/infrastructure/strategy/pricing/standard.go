package pricing

import (
	"context"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/shared/strategy"
)

// StandardPricingStrategy sells at the distributor price, only applying rounding
type StandardPricingStrategy struct {
	strategy.BaseStrategy
	rounding strategy.RoundingRule
}

// NewStandardPricingStrategy creates a new standard pricing strategy
func NewStandardPricingStrategy(rounding strategy.RoundingRule) *StandardPricingStrategy {
	return &StandardPricingStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			MarkupNone,
			strategy.StrategyTypePricing,
			"Standard pricing using the distributor price without markup",
		),
		rounding: rounding,
	}
}

// CalculatePrice rounds the base price to the platform granularity
func (s *StandardPricingStrategy) CalculatePrice(
	ctx context.Context,
	pricingCtx strategy.PricingContext,
) (strategy.PricingResult, error) {
	price := s.rounding.Apply(pricingCtx.BasePrice)

	return strategy.PricingResult{
		Price:        price,
		MarkupAmount: price.Sub(pricingCtx.BasePrice),
		Currency:     pricingCtx.Currency,
		AppliedRules: []string{"standard_pricing"},
	}, nil
}
