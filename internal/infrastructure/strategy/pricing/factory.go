package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/shared/strategy"
)

// Markup strategy names accepted in configuration
const (
	MarkupNone    = "none"
	MarkupPercent = "percent"
	MarkupFixed   = "fixed"
)

// Settings selects and parameterizes a pricing strategy
type Settings struct {
	// Markup is one of none, percent, fixed
	Markup string
	// Value is the percentage for percent markup or the amount for fixed margin
	Value decimal.Decimal
	// RoundStep is the price granularity, e.g. 0.01 or 1
	RoundStep decimal.Decimal
	// RoundMode is one of half_up, up, down
	RoundMode string
}

// New builds the pricing strategy described by settings
func New(settings Settings) (strategy.PricingStrategy, error) {
	mode, err := strategy.ParseRoundingMode(settings.RoundMode)
	if err != nil {
		return nil, err
	}
	if settings.RoundStep.IsNegative() {
		return nil, fmt.Errorf("pricing: round step cannot be negative, got %s", settings.RoundStep)
	}
	rounding := strategy.NewRoundingRule(settings.RoundStep, mode)

	switch strings.ToLower(strings.TrimSpace(settings.Markup)) {
	case "", MarkupNone:
		return NewStandardPricingStrategy(rounding), nil
	case MarkupPercent:
		return NewPercentMarkupStrategy(settings.Value, rounding)
	case MarkupFixed:
		return NewFixedMarginStrategy(settings.Value, rounding), nil
	default:
		return nil, fmt.Errorf("pricing: unknown markup strategy %q", settings.Markup)
	}
}
