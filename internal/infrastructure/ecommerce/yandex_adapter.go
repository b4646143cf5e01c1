package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
)

// YandexAdapter implements the Marketplace port for one Yandex Market campaign
type YandexAdapter struct {
	config *YandexConfig
	client *httpclient.Client
	logger *zap.Logger
	now    func() time.Time
}

// Ensure YandexAdapter implements the Marketplace interface
var _ integration.Marketplace = (*YandexAdapter)(nil)

// NewYandexAdapter creates an adapter for one campaign
func NewYandexAdapter(config *YandexConfig, httpCfg httpclient.Config, logger *zap.Logger) (*YandexAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", integration.ErrConfiguration, integration.ErrPlatformNotConfigured, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpCfg.BaseURL = config.APIBaseURL
	httpCfg.Headers = map[string]string{
		"Authorization": "Bearer " + config.Token,
	}
	httpCfg.Logger = logger
	client, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: yandex: %v", integration.ErrConfiguration, err)
	}

	return &YandexAdapter{
		config: config,
		client: client,
		logger: logger.Named("yandex").With(zap.String("campaign", config.Name)),
		now:    time.Now,
	}, nil
}

// PlatformCode returns the platform code this adapter handles
func (a *YandexAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeYandexMarket
}

// Target returns the campaign identifier, e.g. yandex:fbs:12345
func (a *YandexAdapter) Target() string {
	if a.config.Name == "" {
		return "yandex:" + a.config.CampaignID
	}
	return "yandex:" + a.config.Name + ":" + a.config.CampaignID
}

// StockBatchLimit returns the maximum stock batch size
func (a *YandexAdapter) StockBatchLimit() int {
	return a.config.stockBatchLimit()
}

// PriceBatchLimit returns the maximum price batch size
func (a *YandexAdapter) PriceBatchLimit() int {
	return a.config.priceBatchLimit()
}

func (a *YandexAdapter) campaignPath(suffix string) string {
	return "/campaigns/" + url.PathEscape(a.config.CampaignID) + suffix
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// ListCatalog pages through offer-mapping-entries until nextPageToken is empty
func (a *YandexAdapter) ListCatalog(ctx context.Context) ([]integration.CatalogEntry, error) {
	var entries []integration.CatalogEntry
	pageToken := ""
	for page := 1; ; page++ {
		query := url.Values{"limit": {strconv.Itoa(a.config.pageSize())}}
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}
		var resp YandexOfferMappingResponse
		err := a.client.DoJSON(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   a.campaignPath("/offer-mapping-entries"),
			Query:  query,
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", integration.ErrCatalogUnavailable, classifyError("yandex", err))
		}
		if resp.Status != "" && !resp.IsSuccess() {
			code, message := resp.FirstError()
			return nil, fmt.Errorf("%w: yandex: %w: %s %s", integration.ErrCatalogUnavailable, integration.ErrPlatformInvalidResponse, code, message)
		}

		for _, e := range resp.Result.OfferMappingEntries {
			if e.Offer.ShopSKU == "" {
				continue
			}
			productID := e.Offer.ShopSKU
			if e.Mapping != nil && e.Mapping.MarketSKU != 0 {
				productID = strconv.FormatInt(e.Mapping.MarketSKU, 10)
			}
			entries = append(entries, integration.CatalogEntry{
				PlatformProductID: productID,
				SKU:               e.Offer.ShopSKU,
			})
		}
		a.logger.Debug("catalog page fetched",
			zap.Int("page", page),
			zap.Int("items", len(resp.Result.OfferMappingEntries)),
		)

		next := resp.Result.Paging.NextPageToken
		if next == "" || next == pageToken {
			break
		}
		pageToken = next
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

// UpdateStocks submits one batch of FIT stock counts for the campaign warehouse
func (a *YandexAdapter) UpdateStocks(ctx context.Context, batch []integration.StockUpdate) (*integration.BatchResult, error) {
	updatedAt := a.now().UTC().Truncate(time.Second).Format(time.RFC3339)
	req := YandexStocksRequest{SKUs: make([]YandexStockSKU, 0, len(batch))}
	skus := make([]string, 0, len(batch))
	for _, item := range batch {
		req.SKUs = append(req.SKUs, YandexStockSKU{
			SKU:         item.SKU,
			WarehouseID: a.config.warehouseID(),
			Items: []YandexStockItem{{
				Count:     item.Stock,
				Type:      "FIT",
				UpdatedAt: updatedAt,
			}},
		})
		skus = append(skus, item.SKU)
	}
	return a.submitBatch(ctx, integration.UpdateKindStock, http.MethodPut, a.campaignPath("/offers/stocks"), req, skus)
}

// UpdatePrices submits one batch of prices
func (a *YandexAdapter) UpdatePrices(ctx context.Context, batch []integration.PriceUpdate) (*integration.BatchResult, error) {
	req := YandexPricesRequest{Offers: make([]YandexPriceOffer, 0, len(batch))}
	skus := make([]string, 0, len(batch))
	for _, item := range batch {
		req.Offers = append(req.Offers, YandexPriceOffer{
			ID: item.SKU,
			Price: YandexPrice{
				Value:      json.Number(formatPrice(item.Price)),
				CurrencyID: yandexCurrencyID,
			},
		})
		skus = append(skus, item.SKU)
	}
	return a.submitBatch(ctx, integration.UpdateKindPrice, http.MethodPost, a.campaignPath("/offer-prices/updates"), req, skus)
}

// submitBatch sends one update call. Yandex answers per batch, so a rejected
// batch fails every item in it with the returned reason.
func (a *YandexAdapter) submitBatch(ctx context.Context, kind integration.UpdateKind, method, path string, body any, skus []string) (*integration.BatchResult, error) {
	resp, err := a.client.Do(ctx, httpclient.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, classifyError("yandex", err)
	}

	result := integration.NewBatchResult(kind, len(skus))
	var envelope YandexResponse
	decodeErr := json.Unmarshal(resp.Body, &envelope)

	if !resp.OK() {
		if !isBatchRejection(resp.StatusCode) {
			return nil, classifyError("yandex", &httpclient.StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(resp.Body)})
		}
		code, message := envelope.FirstError()
		if code == "" {
			code = strconv.Itoa(resp.StatusCode)
		}
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		rejectBatch(result, skus, code, message)
		return result.Finalize(), nil
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("yandex: %w: %v", integration.ErrPlatformInvalidResponse, decodeErr)
	}
	if !envelope.IsSuccess() {
		code, message := envelope.FirstError()
		if message == "" {
			message = "status " + envelope.Status
		}
		rejectBatch(result, skus, code, message)
	}
	return result.Finalize(), nil
}
