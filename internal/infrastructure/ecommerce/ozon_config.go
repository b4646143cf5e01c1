package ecommerce

import (
	"errors"
	"fmt"
)

// Ozon Seller API endpoints and limits
const (
	// OzonProductionAPIURL is the production API endpoint
	OzonProductionAPIURL = "https://api-seller.ozon.ru"

	OzonMaxStockBatch = 100
	OzonMaxPriceBatch = 1000
	OzonMaxPageSize   = 1000

	ozonCurrencyCode = "RUB"
)

// Errors for Ozon configuration
var (
	ErrOzonConfigMissingClientID = errors.New("ozon: client ID is required")
	ErrOzonConfigMissingAPIKey   = errors.New("ozon: API key is required")
	ErrOzonConfigMissingBaseURL  = errors.New("ozon: API base URL is required")
)

// OzonConfig holds configuration for the Ozon Seller API
type OzonConfig struct {
	// ClientID is the seller's Client-Id
	ClientID string
	// APIKey is the seller's Api-Key
	APIKey string
	// APIBaseURL is the base URL for the Seller API
	APIBaseURL string
	// StockBatchSize is capped at OzonMaxStockBatch
	StockBatchSize int
	// PriceBatchSize is capped at OzonMaxPriceBatch
	PriceBatchSize int
	// PageSize is the product list page size, capped at OzonMaxPageSize
	PageSize int
}

// NewOzonConfig creates a new Ozon configuration with defaults
func NewOzonConfig(clientID, apiKey string) *OzonConfig {
	return &OzonConfig{
		ClientID:       clientID,
		APIKey:         apiKey,
		APIBaseURL:     OzonProductionAPIURL,
		StockBatchSize: OzonMaxStockBatch,
		PriceBatchSize: OzonMaxPriceBatch,
		PageSize:       OzonMaxPageSize,
	}
}

// Validate validates the Ozon configuration
func (c *OzonConfig) Validate() error {
	if c.ClientID == "" {
		return ErrOzonConfigMissingClientID
	}
	if c.APIKey == "" {
		return ErrOzonConfigMissingAPIKey
	}
	if c.APIBaseURL == "" {
		return ErrOzonConfigMissingBaseURL
	}
	if c.StockBatchSize < 0 || c.PriceBatchSize < 0 || c.PageSize < 0 {
		return fmt.Errorf("ozon: batch and page sizes must not be negative")
	}
	return nil
}

// stockBatchLimit returns the effective stock batch size
func (c *OzonConfig) stockBatchLimit() int {
	return capLimit(c.StockBatchSize, OzonMaxStockBatch)
}

func (c *OzonConfig) priceBatchLimit() int {
	return capLimit(c.PriceBatchSize, OzonMaxPriceBatch)
}

func (c *OzonConfig) pageSize() int {
	return capLimit(c.PageSize, OzonMaxPageSize)
}

// capLimit falls back to max for unset values and never exceeds it
func capLimit(v, max int) int {
	if v <= 0 || v > max {
		return max
	}
	return v
}
