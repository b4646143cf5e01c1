package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/shared/strategy"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPercentMarkupStrategy_CalculatePrice(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		rate     string
		step     string
		mode     strategy.RoundingMode
		base     string
		expected string
	}{
		{"10 percent to kopecks", "10", "0.01", strategy.RoundingHalfUp, "100.00", "110.00"},
		{"15 percent to rubles", "15", "1", strategy.RoundingHalfUp, "5990", "6889"},
		{"15 percent to tens up", "15", "10", strategy.RoundingUp, "5990", "6890"},
		{"zero rate keeps price", "0", "1", strategy.RoundingHalfUp, "4590", "4590"},
		{"discount", "-10", "0.01", strategy.RoundingHalfUp, "200", "180"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewPercentMarkupStrategy(d(tt.rate), strategy.NewRoundingRule(d(tt.step), tt.mode))
			require.NoError(t, err)

			result, err := s.CalculatePrice(ctx, strategy.PricingContext{SKU: "GA-100", BasePrice: d(tt.base), Currency: "RUB"})
			require.NoError(t, err)
			assert.True(t, result.Price.Equal(d(tt.expected)), "got %s", result.Price)
			assert.True(t, result.MarkupAmount.Equal(d(tt.expected).Sub(d(tt.base))))
			assert.Equal(t, "RUB", result.Currency)
			assert.Equal(t, []string{"percent_markup"}, result.AppliedRules)
		})
	}
}

func TestNewPercentMarkupStrategy_RejectsFullDiscount(t *testing.T) {
	_, err := NewPercentMarkupStrategy(d("-100"), strategy.RoundingRule{})
	assert.Error(t, err)
}

func TestFixedMarginStrategy_CalculatePrice(t *testing.T) {
	s := NewFixedMarginStrategy(d("250"), strategy.NewRoundingRule(d("1"), strategy.RoundingHalfUp))

	result, err := s.CalculatePrice(context.Background(), strategy.PricingContext{BasePrice: d("999.60")})

	require.NoError(t, err)
	assert.True(t, result.Price.Equal(d("1250")), "got %s", result.Price)
	assert.Equal(t, MarkupFixed, s.Name())
	assert.Equal(t, strategy.StrategyTypePricing, s.Type())
}

func TestStandardPricingStrategy_CalculatePrice(t *testing.T) {
	s := NewStandardPricingStrategy(strategy.NewRoundingRule(d("1"), strategy.RoundingDown))

	result, err := s.CalculatePrice(context.Background(), strategy.PricingContext{BasePrice: d("5990.99")})

	require.NoError(t, err)
	assert.True(t, result.Price.Equal(d("5990")))
	assert.NotEmpty(t, s.Description())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantName string
		wantErr  bool
	}{
		{"default is standard", Settings{}, MarkupNone, false},
		{"percent", Settings{Markup: "percent", Value: d("10"), RoundStep: d("0.01")}, MarkupPercent, false},
		{"fixed upper case", Settings{Markup: "FIXED", Value: d("100"), RoundStep: d("1")}, MarkupFixed, false},
		{"unknown markup", Settings{Markup: "tiered"}, "", true},
		{"bad rounding mode", Settings{Markup: "percent", RoundMode: "bankers"}, "", true},
		{"negative step", Settings{Markup: "percent", RoundStep: d("-1")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}
