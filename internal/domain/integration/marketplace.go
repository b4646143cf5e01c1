package integration

import (
	"context"
	"errors"
)

// ---------------------------------------------------------------------------
// Sync Errors
// ---------------------------------------------------------------------------

var (
	// Run-level errors. All but ErrInvalidPrice abort the run.
	ErrConfiguration      = errors.New("integration: configuration error")
	ErrSourceUnavailable  = errors.New("integration: source feed unavailable")
	ErrCatalogUnavailable = errors.New("integration: platform catalog unavailable")
	ErrInvalidPrice       = errors.New("integration: invalid price")
	ErrPlatformUpdate     = errors.New("integration: platform update failed")

	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
)

// ---------------------------------------------------------------------------
// PlatformCode represents the destination marketplace
// ---------------------------------------------------------------------------

// PlatformCode represents the type of marketplace platform
type PlatformCode string

const (
	// PlatformCodeOzon represents the Ozon Seller API
	PlatformCodeOzon PlatformCode = "OZON"
	// PlatformCodeYandexMarket represents the Yandex Market Partner API
	PlatformCodeYandexMarket PlatformCode = "YANDEX_MARKET"
)

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeOzon, PlatformCodeYandexMarket:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformCodeOzon:
		return "Ozon"
	case PlatformCodeYandexMarket:
		return "Яндекс Маркет"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// SourceFeed is the port for the distributor's authoritative stock/price feed.
// Implementations return an error wrapping ErrSourceUnavailable on failure.
type SourceFeed interface {
	FetchRecords(ctx context.Context) (*FeedSnapshot, error)
}

// Marketplace defines the port for one seller account (or campaign) on a
// marketplace. Implementations live in the infrastructure layer.
type Marketplace interface {
	// PlatformCode returns the platform code this adapter handles
	PlatformCode() PlatformCode

	// Target identifies the seller account or campaign this adapter writes to
	Target() string

	// ListCatalog pages through the seller's full product catalog.
	// Failures wrap ErrCatalogUnavailable.
	ListCatalog(ctx context.Context) ([]CatalogEntry, error)

	// StockBatchLimit is the maximum number of items per stock update call
	StockBatchLimit() int

	// PriceBatchLimit is the maximum number of items per price update call
	PriceBatchLimit() int

	// UpdateStocks submits one batch of stock updates.
	// A non-nil error means the batch was not accepted by the platform at all;
	// per-item rejections are reported in the BatchResult instead.
	UpdateStocks(ctx context.Context, batch []StockUpdate) (*BatchResult, error)

	// UpdatePrices submits one batch of price updates, with the same error
	// contract as UpdateStocks.
	UpdatePrices(ctx context.Context, batch []PriceUpdate) (*BatchResult, error)
}
