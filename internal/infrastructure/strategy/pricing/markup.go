package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/shared/strategy"
)

var hundred = decimal.NewFromInt(100)

// PercentMarkupStrategy multiplies the base price by (1 + rate/100)
type PercentMarkupStrategy struct {
	strategy.BaseStrategy
	ratePercent decimal.Decimal
	rounding    strategy.RoundingRule
}

// NewPercentMarkupStrategy creates a multiplicative markup strategy.
// ratePercent may be negative for a discount but not below -100.
func NewPercentMarkupStrategy(ratePercent decimal.Decimal, rounding strategy.RoundingRule) (*PercentMarkupStrategy, error) {
	if ratePercent.LessThanOrEqual(hundred.Neg()) {
		return nil, fmt.Errorf("pricing: markup rate %s%% would make every price non-positive", ratePercent)
	}
	return &PercentMarkupStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			MarkupPercent,
			strategy.StrategyTypePricing,
			"Multiplicative markup as a percentage of the distributor price",
		),
		ratePercent: ratePercent,
		rounding:    rounding,
	}, nil
}

// CalculatePrice applies the percentage markup, then rounds
func (s *PercentMarkupStrategy) CalculatePrice(
	ctx context.Context,
	pricingCtx strategy.PricingContext,
) (strategy.PricingResult, error) {
	factor := decimal.NewFromInt(1).Add(s.ratePercent.Div(hundred))
	price := s.rounding.Apply(pricingCtx.BasePrice.Mul(factor))

	return strategy.PricingResult{
		Price:        price,
		MarkupAmount: price.Sub(pricingCtx.BasePrice),
		Currency:     pricingCtx.Currency,
		AppliedRules: []string{"percent_markup"},
	}, nil
}

// FixedMarginStrategy adds a fixed amount to the base price
type FixedMarginStrategy struct {
	strategy.BaseStrategy
	margin   decimal.Decimal
	rounding strategy.RoundingRule
}

// NewFixedMarginStrategy creates an additive margin strategy
func NewFixedMarginStrategy(margin decimal.Decimal, rounding strategy.RoundingRule) *FixedMarginStrategy {
	return &FixedMarginStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			MarkupFixed,
			strategy.StrategyTypePricing,
			"Additive margin on top of the distributor price",
		),
		margin:   margin,
		rounding: rounding,
	}
}

// CalculatePrice adds the margin, then rounds
func (s *FixedMarginStrategy) CalculatePrice(
	ctx context.Context,
	pricingCtx strategy.PricingContext,
) (strategy.PricingResult, error) {
	price := s.rounding.Apply(pricingCtx.BasePrice.Add(s.margin))

	return strategy.PricingResult{
		Price:        price,
		MarkupAmount: price.Sub(pricingCtx.BasePrice),
		Currency:     pricingCtx.Currency,
		AppliedRules: []string{"fixed_margin"},
	}, nil
}
