package ecommerce

import (
	"errors"
	"fmt"
	"strconv"
)

// Yandex Market Partner API endpoints and limits
const (
	// YandexProductionAPIURL is the production API endpoint
	YandexProductionAPIURL = "https://api.partner.market.yandex.ru"

	YandexMaxStockBatch = 2000
	YandexMaxPriceBatch = 500
	YandexMaxPageSize   = 200

	yandexCurrencyID = "RUR"
)

// Errors for Yandex Market configuration
var (
	ErrYandexConfigMissingToken       = errors.New("yandex: API token is required")
	ErrYandexConfigMissingCampaignID  = errors.New("yandex: campaign ID is required")
	ErrYandexConfigMissingWarehouseID = errors.New("yandex: warehouse ID is required")
	ErrYandexConfigMissingBaseURL     = errors.New("yandex: API base URL is required")
)

// YandexConfig holds configuration for one Yandex Market campaign
type YandexConfig struct {
	// Token is the OAuth token sent as a Bearer credential
	Token string
	// Name labels the campaign in logs and reports (fbs, dbs)
	Name string
	// CampaignID is the campaign (store) identifier
	CampaignID string
	// WarehouseID is the seller warehouse that stock counts apply to
	WarehouseID string
	// APIBaseURL is the base URL for the Partner API
	APIBaseURL     string
	StockBatchSize int
	PriceBatchSize int
	PageSize       int
}

// NewYandexConfig creates a new Yandex Market configuration with defaults
func NewYandexConfig(token, name, campaignID, warehouseID string) *YandexConfig {
	return &YandexConfig{
		Token:          token,
		Name:           name,
		CampaignID:     campaignID,
		WarehouseID:    warehouseID,
		APIBaseURL:     YandexProductionAPIURL,
		StockBatchSize: YandexMaxStockBatch,
		PriceBatchSize: YandexMaxPriceBatch,
		PageSize:       YandexMaxPageSize,
	}
}

// Validate validates the Yandex Market configuration
func (c *YandexConfig) Validate() error {
	if c.Token == "" {
		return ErrYandexConfigMissingToken
	}
	if c.CampaignID == "" {
		return ErrYandexConfigMissingCampaignID
	}
	if c.WarehouseID == "" {
		return ErrYandexConfigMissingWarehouseID
	}
	if c.APIBaseURL == "" {
		return ErrYandexConfigMissingBaseURL
	}
	if _, err := strconv.ParseInt(c.WarehouseID, 10, 64); err != nil {
		return fmt.Errorf("yandex: warehouse ID %q must be numeric", c.WarehouseID)
	}
	return nil
}

func (c *YandexConfig) warehouseID() int64 {
	id, _ := strconv.ParseInt(c.WarehouseID, 10, 64)
	return id
}

func (c *YandexConfig) stockBatchLimit() int {
	return capLimit(c.StockBatchSize, YandexMaxStockBatch)
}

func (c *YandexConfig) priceBatchLimit() int {
	return capLimit(c.PriceBatchSize, YandexMaxPriceBatch)
}

func (c *YandexConfig) pageSize() int {
	return capLimit(c.PageSize, YandexMaxPageSize)
}
