package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PricingContext provides context for a sell price calculation
type PricingContext struct {
	SKU       string
	BasePrice decimal.Decimal
	Currency  string
}

// PricingResult contains the result of a sell price calculation
type PricingResult struct {
	// Price is the final sell price after markup and rounding
	Price decimal.Decimal
	// MarkupAmount is Price minus BasePrice
	MarkupAmount decimal.Decimal
	Currency     string
	AppliedRules []string
}

// PricingStrategy turns a distributor base price into a marketplace sell price
type PricingStrategy interface {
	Strategy
	// CalculatePrice calculates the sell price for a given pricing context
	CalculatePrice(ctx context.Context, pricingCtx PricingContext) (PricingResult, error)
}

// RoundingMode selects how a price snaps to the rounding step
type RoundingMode string

const (
	// RoundingHalfUp rounds to the nearest step, halves away from zero
	RoundingHalfUp RoundingMode = "half_up"
	// RoundingUp always rounds towards the next step
	RoundingUp RoundingMode = "up"
	// RoundingDown always truncates to the previous step
	RoundingDown RoundingMode = "down"
)

// IsValid returns true if the rounding mode is known
func (m RoundingMode) IsValid() bool {
	switch m {
	case RoundingHalfUp, RoundingUp, RoundingDown:
		return true
	default:
		return false
	}
}

// ParseRoundingMode parses a rounding mode name, case-insensitively
func ParseRoundingMode(s string) (RoundingMode, error) {
	mode := RoundingMode(strings.ToLower(strings.TrimSpace(s)))
	if mode == "" {
		return RoundingHalfUp, nil
	}
	if !mode.IsValid() {
		return "", fmt.Errorf("strategy: unknown rounding mode %q", s)
	}
	return mode, nil
}

// RoundingRule describes the price granularity a platform accepts,
// e.g. Step 0.01 for kopecks or Step 1 for whole rubles.
type RoundingRule struct {
	Step decimal.Decimal
	Mode RoundingMode
}

// NewRoundingRule creates a rounding rule; a non-positive step disables rounding
func NewRoundingRule(step decimal.Decimal, mode RoundingMode) RoundingRule {
	if mode == "" {
		mode = RoundingHalfUp
	}
	return RoundingRule{Step: step, Mode: mode}
}

// Apply snaps value to a multiple of the step
func (r RoundingRule) Apply(value decimal.Decimal) decimal.Decimal {
	if !r.Step.IsPositive() {
		return value
	}
	steps := value.Div(r.Step)
	switch r.Mode {
	case RoundingUp:
		steps = steps.Ceil()
	case RoundingDown:
		steps = steps.Floor()
	default:
		steps = steps.Round(0)
	}
	return steps.Mul(r.Step)
}

// WholeUnits returns true if rounded prices never carry a fractional part
func (r RoundingRule) WholeUnits() bool {
	return r.Step.IsPositive() && r.Step.Equal(r.Step.Truncate(0))
}
