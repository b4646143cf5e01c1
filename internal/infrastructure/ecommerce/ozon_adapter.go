package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
)

const (
	ozonProductListPath  = "/v2/product/list"
	ozonImportStocksPath = "/v1/product/import/stocks"
	ozonImportPricesPath = "/v1/product/import/prices"
)

// OzonAdapter implements the Marketplace port for one Ozon seller account
type OzonAdapter struct {
	config *OzonConfig
	client *httpclient.Client
	logger *zap.Logger
}

// Ensure OzonAdapter implements the Marketplace interface
var _ integration.Marketplace = (*OzonAdapter)(nil)

// NewOzonAdapter creates a new Ozon adapter. httpCfg carries the shared
// timeout, retry and rate-limit policy; base URL and auth headers come from config.
func NewOzonAdapter(config *OzonConfig, httpCfg httpclient.Config, logger *zap.Logger) (*OzonAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", integration.ErrConfiguration, integration.ErrPlatformNotConfigured, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpCfg.BaseURL = config.APIBaseURL
	httpCfg.Headers = map[string]string{
		"Client-Id": config.ClientID,
		"Api-Key":   config.APIKey,
	}
	httpCfg.Logger = logger
	client, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: ozon: %v", integration.ErrConfiguration, err)
	}

	return &OzonAdapter{config: config, client: client, logger: logger.Named("ozon")}, nil
}

// PlatformCode returns the platform code this adapter handles
func (a *OzonAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeOzon
}

// Target returns the seller account identifier
func (a *OzonAdapter) Target() string {
	return "ozon:" + a.config.ClientID
}

// StockBatchLimit returns the maximum stock batch size
func (a *OzonAdapter) StockBatchLimit() int {
	return a.config.stockBatchLimit()
}

// PriceBatchLimit returns the maximum price batch size
func (a *OzonAdapter) PriceBatchLimit() int {
	return a.config.priceBatchLimit()
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// ListCatalog pages through /v2/product/list until total is reached
func (a *OzonAdapter) ListCatalog(ctx context.Context) ([]integration.CatalogEntry, error) {
	var entries []integration.CatalogEntry
	lastID := ""
	for page := 1; ; page++ {
		req := OzonProductListRequest{
			Filter: OzonProductFilter{Visibility: "ALL"},
			LastID: lastID,
			Limit:  a.config.pageSize(),
		}
		var resp OzonProductListResponse
		err := a.client.DoJSON(ctx, httpclient.Request{Method: http.MethodPost, Path: ozonProductListPath, Body: req}, &resp)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", integration.ErrCatalogUnavailable, classifyError("ozon", err))
		}

		for _, item := range resp.Result.Items {
			entries = append(entries, integration.CatalogEntry{
				PlatformProductID: strconv.FormatInt(item.ProductID, 10),
				SKU:               item.OfferID,
			})
		}
		a.logger.Debug("catalog page fetched",
			zap.Int("page", page),
			zap.Int("items", len(resp.Result.Items)),
			zap.Int("total", resp.Result.Total),
		)

		if len(resp.Result.Items) == 0 || len(entries) >= resp.Result.Total || resp.Result.LastID == "" || resp.Result.LastID == lastID {
			break
		}
		lastID = resp.Result.LastID
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

// UpdateStocks submits one batch to /v1/product/import/stocks
func (a *OzonAdapter) UpdateStocks(ctx context.Context, batch []integration.StockUpdate) (*integration.BatchResult, error) {
	req := OzonStocksRequest{Stocks: make([]OzonStockItem, 0, len(batch))}
	skus := make([]string, 0, len(batch))
	for _, item := range batch {
		req.Stocks = append(req.Stocks, OzonStockItem{
			OfferID:   item.SKU,
			ProductID: parseProductID(item.PlatformProductID),
			Stock:     item.Stock,
		})
		skus = append(skus, item.SKU)
	}
	return a.importBatch(ctx, integration.UpdateKindStock, ozonImportStocksPath, req, skus)
}

// UpdatePrices submits one batch to /v1/product/import/prices
func (a *OzonAdapter) UpdatePrices(ctx context.Context, batch []integration.PriceUpdate) (*integration.BatchResult, error) {
	req := OzonPricesRequest{Prices: make([]OzonPriceItem, 0, len(batch))}
	skus := make([]string, 0, len(batch))
	for _, item := range batch {
		req.Prices = append(req.Prices, OzonPriceItem{
			AutoActionEnabled: "UNKNOWN",
			CurrencyCode:      ozonCurrencyCode,
			OfferID:           item.SKU,
			OldPrice:          "0",
			Price:             formatPrice(item.Price),
			ProductID:         parseProductID(item.PlatformProductID),
		})
		skus = append(skus, item.SKU)
	}
	return a.importBatch(ctx, integration.UpdateKindPrice, ozonImportPricesPath, req, skus)
}

// importBatch posts an import request and folds the per-item answer into a BatchResult
func (a *OzonAdapter) importBatch(ctx context.Context, kind integration.UpdateKind, path string, body any, skus []string) (*integration.BatchResult, error) {
	resp, err := a.client.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, classifyError("ozon", err)
	}

	result := integration.NewBatchResult(kind, len(skus))
	if !resp.OK() {
		if !isBatchRejection(resp.StatusCode) {
			return nil, classifyError("ozon", &httpclient.StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: string(resp.Body)})
		}
		var apiErr OzonErrorResponse
		_ = json.Unmarshal(resp.Body, &apiErr)
		message := apiErr.Message
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		rejectBatch(result, skus, strconv.Itoa(resp.StatusCode), message)
		return result.Finalize(), nil
	}

	var importResp OzonImportResponse
	if err := json.Unmarshal(resp.Body, &importResp); err != nil {
		return nil, fmt.Errorf("ozon: %w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	reported := make(map[string]struct{}, len(importResp.Result))
	for _, item := range importResp.Result {
		reported[item.OfferID] = struct{}{}
		if item.Updated && len(item.Errors) == 0 {
			continue
		}
		failure := integration.SyncFailure{ItemID: item.OfferID, ErrorMessage: "not updated"}
		if len(item.Errors) > 0 {
			failure.ErrorCode = item.Errors[0].Code
			failure.ErrorMessage = item.Errors[0].Message
			if failure.ErrorMessage == "" {
				failure.ErrorMessage = item.Errors[0].Code
			}
		}
		result.RecordFailure(failure)
	}
	for _, sku := range skus {
		if _, ok := reported[sku]; !ok {
			result.RecordFailure(integration.SyncFailure{ItemID: sku, ErrorMessage: "not acknowledged by platform"})
		}
	}
	return result.Finalize(), nil
}

// parseProductID returns 0 for identifiers that are not Ozon numeric IDs
func parseProductID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
