package ecommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
)

func testHTTPConfig() httpclient.Config {
	return httpclient.Config{
		Timeout: 5 * time.Second,
		Retry:   httpclient.RetryConfig{MaxRetries: 0, RetryDelay: time.Millisecond},
	}
}

func newTestOzonAdapter(t *testing.T, handler http.HandlerFunc) *OzonAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := NewOzonConfig("12345", "api-key")
	cfg.APIBaseURL = srv.URL
	adapter, err := NewOzonAdapter(cfg, testHTTPConfig(), nil)
	require.NoError(t, err)
	return adapter
}

func TestOzonConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, NewOzonConfig("", "key").Validate(), ErrOzonConfigMissingClientID)
	assert.ErrorIs(t, NewOzonConfig("1", "").Validate(), ErrOzonConfigMissingAPIKey)
	assert.NoError(t, NewOzonConfig("1", "key").Validate())

	_, err := NewOzonAdapter(NewOzonConfig("", "key"), testHTTPConfig(), nil)
	assert.ErrorIs(t, err, integration.ErrConfiguration)
	assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)
}

func TestOzonAdapter_Limits(t *testing.T) {
	cfg := NewOzonConfig("1", "key")
	cfg.StockBatchSize = 500
	cfg.PriceBatchSize = 10
	adapter, err := NewOzonAdapter(cfg, testHTTPConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, OzonMaxStockBatch, adapter.StockBatchLimit())
	assert.Equal(t, 10, adapter.PriceBatchLimit())
	assert.Equal(t, integration.PlatformCodeOzon, adapter.PlatformCode())
	assert.Equal(t, "ozon:1", adapter.Target())
}

func TestOzonAdapter_ListCatalog_Paginates(t *testing.T) {
	pages := map[string]OzonProductListResponse{
		"": {Result: OzonProductListResult{
			Items:  []OzonProductListItem{{ProductID: 1, OfferID: "A1"}, {ProductID: 2, OfferID: "A2"}},
			Total:  5,
			LastID: "cursor-1",
		}},
		"cursor-1": {Result: OzonProductListResult{
			Items:  []OzonProductListItem{{ProductID: 3, OfferID: "A3"}, {ProductID: 4, OfferID: "A4"}},
			Total:  5,
			LastID: "cursor-2",
		}},
		"cursor-2": {Result: OzonProductListResult{
			Items:  []OzonProductListItem{{ProductID: 5, OfferID: "A5"}},
			Total:  5,
			LastID: "cursor-3",
		}},
	}
	calls := 0
	adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, ozonProductListPath, r.URL.Path)
		assert.Equal(t, "12345", r.Header.Get("Client-Id"))
		assert.Equal(t, "api-key", r.Header.Get("Api-Key"))

		var req OzonProductListRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ALL", req.Filter.Visibility)
		assert.Equal(t, OzonMaxPageSize, req.Limit)

		page, ok := pages[req.LastID]
		require.True(t, ok, "unexpected cursor %q", req.LastID)
		_ = json.NewEncoder(w).Encode(page)
	})

	entries, err := adapter.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, 3, calls)
	assert.Equal(t, integration.CatalogEntry{PlatformProductID: "1", SKU: "A1"}, entries[0])
	assert.Equal(t, "A5", entries[4].SKU)
}

func TestOzonAdapter_ListCatalog_EmptyCatalog(t *testing.T) {
	adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"items":[],"total":0,"last_id":""}}`))
	})

	entries, err := adapter.ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOzonAdapter_ListCatalog_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "auth", status: http.StatusForbidden, body: `{"code":7,"message":"Invalid Api-Key"}`, want: integration.ErrPlatformAuthFailed},
		{name: "throttled", status: http.StatusTooManyRequests, want: integration.ErrPlatformRateLimited},
		{name: "down", status: http.StatusBadGateway, want: integration.ErrPlatformUnavailable},
		{name: "garbage", status: http.StatusOK, body: `not json`, want: integration.ErrPlatformInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := adapter.ListCatalog(context.Background())
			assert.ErrorIs(t, err, integration.ErrCatalogUnavailable)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOzonAdapter_UpdateStocks_PartialFailure(t *testing.T) {
	adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ozonImportStocksPath, r.URL.Path)

		var req OzonStocksRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Stocks, 3)
		assert.Equal(t, OzonStockItem{OfferID: "A1", ProductID: 101, Stock: 100}, req.Stocks[0])
		assert.Equal(t, 0, req.Stocks[2].Stock)

		_ = json.NewEncoder(w).Encode(OzonImportResponse{Result: []OzonImportResult{
			{ProductID: 101, OfferID: "A1", Updated: true},
			{ProductID: 102, OfferID: "A2", Updated: false, Errors: []OzonItemError{{Code: "NOT_FOUND", Message: "product not found"}}},
			{ProductID: 103, OfferID: "A3", Updated: true},
		}})
	})

	result, err := adapter.UpdateStocks(context.Background(), []integration.StockUpdate{
		{PlatformProductID: "101", SKU: "A1", Stock: 100},
		{PlatformProductID: "102", SKU: "A2", Stock: 5},
		{PlatformProductID: "103", SKU: "A3", Stock: 0},
	})
	require.NoError(t, err)

	assert.True(t, result.Submitted)
	assert.Equal(t, integration.UpdateKindStock, result.Kind)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, integration.SyncFailure{ItemID: "A2", ErrorCode: "NOT_FOUND", ErrorMessage: "product not found"}, result.Failures[0])
}

func TestOzonAdapter_UpdateStocks_MissingAcknowledgement(t *testing.T) {
	adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"offer_id":"A1","updated":true}]}`))
	})

	result, err := adapter.UpdateStocks(context.Background(), []integration.StockUpdate{
		{SKU: "A1", Stock: 1},
		{SKU: "A2", Stock: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "A2", result.Failures[0].ItemID)
}

func TestOzonAdapter_UpdatePrices_Payload(t *testing.T) {
	adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ozonImportPricesPath, r.URL.Path)

		var raw map[string][]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Len(t, raw["prices"], 1)
		item := raw["prices"][0]
		assert.Equal(t, "UNKNOWN", item["auto_action_enabled"])
		assert.Equal(t, "RUB", item["currency_code"])
		assert.Equal(t, "A1", item["offer_id"])
		assert.Equal(t, "0", item["old_price"])
		assert.Equal(t, "5990", item["price"])
		assert.EqualValues(t, 101, item["product_id"])

		_, _ = w.Write([]byte(`{"result":[{"product_id":101,"offer_id":"A1","updated":true,"errors":[]}]}`))
	})

	result, err := adapter.UpdatePrices(context.Background(), []integration.PriceUpdate{
		{PlatformProductID: "101", SKU: "A1", Price: decimal.NewFromInt(5990)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Zero(t, result.FailedCount)
}

func TestOzonAdapter_UpdateRejectedBatch(t *testing.T) {
	adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":3,"message":"stocks: too many items"}`))
	})

	result, err := adapter.UpdateStocks(context.Background(), []integration.StockUpdate{{SKU: "A1"}, {SKU: "A2"}})
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, 2, result.FailedCount)
	assert.Zero(t, result.SuccessCount)
	assert.Equal(t, "stocks: too many items", result.Failures[1].ErrorMessage)
	assert.Equal(t, "400", result.Failures[1].ErrorCode)
}

func TestOzonAdapter_UpdateUnreachable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "auth", status: http.StatusUnauthorized, want: integration.ErrPlatformAuthFailed},
		{name: "server", status: http.StatusInternalServerError, want: integration.ErrPlatformUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestOzonAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			result, err := adapter.UpdatePrices(context.Background(), []integration.PriceUpdate{{SKU: "A1", Price: decimal.NewFromInt(1)}})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseProductID(t *testing.T) {
	assert.EqualValues(t, 123, parseProductID("123"))
	assert.Zero(t, parseProductID("A-123"))
	assert.Zero(t, parseProductID(""))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "5990", formatPrice(decimal.NewFromInt(5990)))
	assert.Equal(t, "5990", formatPrice(decimal.RequireFromString("5990.00")))
	assert.Equal(t, "1249.50", formatPrice(decimal.RequireFromString("1249.5")))
	assert.Equal(t, "110.00", formatPrice(decimal.RequireFromString("109.999")))
}
