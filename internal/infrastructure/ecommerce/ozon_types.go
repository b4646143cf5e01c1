package ecommerce

// ---------------------------------------------------------------------------
// Product list (/v2/product/list)
// ---------------------------------------------------------------------------

// OzonProductListRequest is the request body of /v2/product/list
type OzonProductListRequest struct {
	Filter OzonProductFilter `json:"filter"`
	LastID string            `json:"last_id"`
	Limit  int               `json:"limit"`
}

// OzonProductFilter narrows the product list; "ALL" lists every product
type OzonProductFilter struct {
	OfferID    []string `json:"offer_id,omitempty"`
	ProductID  []string `json:"product_id,omitempty"`
	Visibility string   `json:"visibility"`
}

// OzonProductListResponse is the response of /v2/product/list
type OzonProductListResponse struct {
	Result OzonProductListResult `json:"result"`
}

// OzonProductListResult is one page of products
type OzonProductListResult struct {
	Items  []OzonProductListItem `json:"items"`
	Total  int                   `json:"total"`
	LastID string                `json:"last_id"`
}

// OzonProductListItem is one catalog product
type OzonProductListItem struct {
	ProductID int64  `json:"product_id"`
	OfferID   string `json:"offer_id"`
}

// ---------------------------------------------------------------------------
// Stock and price import
// ---------------------------------------------------------------------------

// OzonStocksRequest is the request body of /v1/product/import/stocks
type OzonStocksRequest struct {
	Stocks []OzonStockItem `json:"stocks"`
}

// OzonStockItem sets the stock of one offer
type OzonStockItem struct {
	OfferID   string `json:"offer_id"`
	ProductID int64  `json:"product_id,omitempty"`
	Stock     int    `json:"stock"`
}

// OzonPricesRequest is the request body of /v1/product/import/prices
type OzonPricesRequest struct {
	Prices []OzonPriceItem `json:"prices"`
}

// OzonPriceItem sets the price of one offer. Prices are decimal strings.
type OzonPriceItem struct {
	AutoActionEnabled string `json:"auto_action_enabled"`
	CurrencyCode      string `json:"currency_code"`
	OfferID           string `json:"offer_id"`
	OldPrice          string `json:"old_price"`
	Price             string `json:"price"`
	ProductID         int64  `json:"product_id,omitempty"`
}

// OzonImportResponse is the per-item answer of both import endpoints
type OzonImportResponse struct {
	Result []OzonImportResult `json:"result"`
}

// OzonImportResult reports one item
type OzonImportResult struct {
	ProductID int64           `json:"product_id"`
	OfferID   string          `json:"offer_id"`
	Updated   bool            `json:"updated"`
	Errors    []OzonItemError `json:"errors"`
}

// OzonItemError is a per-item rejection reason
type OzonItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OzonErrorResponse is the body of a non-2xx answer
type OzonErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
