package ecommerce

import "encoding/json"

// ---------------------------------------------------------------------------
// Common Yandex Market API Response Types
// ---------------------------------------------------------------------------

// YandexResponse is the status envelope of every Partner API answer
type YandexResponse struct {
	Status string        `json:"status"`
	Errors []YandexError `json:"errors,omitempty"`
}

// IsSuccess returns true if the response indicates success
func (r *YandexResponse) IsSuccess() bool {
	return r.Status == "OK"
}

// FirstError returns the first reported error, if any
func (r *YandexResponse) FirstError() (code, message string) {
	if len(r.Errors) == 0 {
		return "", ""
	}
	return r.Errors[0].Code, r.Errors[0].Message
}

// YandexError is a batch-level rejection reason
type YandexError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Offer mapping entries (catalog)
// ---------------------------------------------------------------------------

// YandexOfferMappingResponse is one page of GET /campaigns/{id}/offer-mapping-entries
type YandexOfferMappingResponse struct {
	YandexResponse
	Result YandexOfferMappingResult `json:"result"`
}

// YandexOfferMappingResult holds the entries and the paging cursor
type YandexOfferMappingResult struct {
	Paging              YandexPaging              `json:"paging"`
	OfferMappingEntries []YandexOfferMappingEntry `json:"offerMappingEntries"`
}

// YandexPaging is the cursor block
type YandexPaging struct {
	NextPageToken string `json:"nextPageToken"`
}

// YandexOfferMappingEntry pairs a seller offer with its market card
type YandexOfferMappingEntry struct {
	Offer   YandexOffer         `json:"offer"`
	Mapping *YandexOfferMapping `json:"mapping,omitempty"`
}

// YandexOffer is the seller-side offer
type YandexOffer struct {
	ShopSKU string `json:"shopSku"`
}

// YandexOfferMapping is the market card an offer is bound to
type YandexOfferMapping struct {
	MarketSKU int64 `json:"marketSku"`
}

// ---------------------------------------------------------------------------
// Stocks (PUT /campaigns/{id}/offers/stocks)
// ---------------------------------------------------------------------------

// YandexStocksRequest is the request body of the stocks endpoint
type YandexStocksRequest struct {
	SKUs []YandexStockSKU `json:"skus"`
}

// YandexStockSKU sets the stock of one offer in one warehouse
type YandexStockSKU struct {
	SKU         string            `json:"sku"`
	WarehouseID int64             `json:"warehouseId"`
	Items       []YandexStockItem `json:"items"`
}

// YandexStockItem is a stock count; FIT is sellable stock
type YandexStockItem struct {
	Count     int    `json:"count"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
}

// ---------------------------------------------------------------------------
// Prices (POST /campaigns/{id}/offer-prices/updates)
// ---------------------------------------------------------------------------

// YandexPricesRequest is the request body of the price update endpoint
type YandexPricesRequest struct {
	Offers []YandexPriceOffer `json:"offers"`
}

// YandexPriceOffer sets the price of one offer
type YandexPriceOffer struct {
	ID    string      `json:"id"`
	Price YandexPrice `json:"price"`
}

// YandexPrice is sent as a JSON number
type YandexPrice struct {
	Value      json.Number `json:"value"`
	CurrencyID string      `json:"currencyId"`
}
