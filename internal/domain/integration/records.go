package integration

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceRecord is one product row of the distributor feed
type SourceRecord struct {
	// SKU is the distributor article code, used as the cross-platform key
	SKU string
	// StockQuantity is the normalized quantity available at the distributor
	StockQuantity int
	// BasePrice is the distributor price before markup
	BasePrice decimal.Decimal
}

// FeedSnapshot is the result of one feed download
type FeedSnapshot struct {
	Records []SourceRecord
	// SkippedRows counts rows dropped while parsing (empty SKU, bad stock, duplicates)
	SkippedRows int
	// FetchedAt is when the feed was downloaded
	FetchedAt time.Time
}

// CatalogEntry is one product in the seller's marketplace catalog
type CatalogEntry struct {
	// PlatformProductID is the marketplace's own identifier (Ozon product_id, Yandex marketSku)
	PlatformProductID string
	// SKU is the seller-side offer identifier stored on the platform (offer_id, shopSku)
	SKU string
}

// MatchedRecord is a feed row joined with the catalog entry sharing its SKU
type MatchedRecord struct {
	SKU               string
	PlatformProductID string
	StockQuantity     int
	BasePrice         decimal.Decimal
}

// UpdatePayload is the stock and price to publish for one matched product
type UpdatePayload struct {
	PlatformProductID string
	SKU               string
	NewStock          int
	NewPrice          decimal.Decimal
}

// StockUpdate returns the stock half of the payload
func (p UpdatePayload) StockUpdate() StockUpdate {
	return StockUpdate{PlatformProductID: p.PlatformProductID, SKU: p.SKU, Stock: p.NewStock}
}

// PriceUpdate returns the price half of the payload
func (p UpdatePayload) PriceUpdate() PriceUpdate {
	return PriceUpdate{PlatformProductID: p.PlatformProductID, SKU: p.SKU, Price: p.NewPrice}
}

// StockReset zeroes the stock of a catalog product the feed no longer lists
type StockReset struct {
	PlatformProductID string
	SKU               string
}

// StockUpdate returns a zero-stock update for the reset product
func (r StockReset) StockUpdate() StockUpdate {
	return StockUpdate{PlatformProductID: r.PlatformProductID, SKU: r.SKU, Stock: 0}
}

// StockUpdate is one item of a stock update batch
type StockUpdate struct {
	PlatformProductID string
	SKU               string
	Stock             int
}

// PriceUpdate is one item of a price update batch
type PriceUpdate struct {
	PlatformProductID string
	SKU               string
	Price             decimal.Decimal
}
