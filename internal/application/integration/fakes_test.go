package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/strategy/pricing"
)

// MockSourceFeed is a mock implementation of SourceFeed
type MockSourceFeed struct {
	mock.Mock
}

func (m *MockSourceFeed) FetchRecords(ctx context.Context) (*integration.FeedSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.FeedSnapshot), args.Error(1)
}

// MockReporter is a mock implementation of Reporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Name() string {
	return "mock"
}

func (m *MockReporter) Report(ctx context.Context, summary *integration.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

// fakeMarketplace records every update call and answers from its fields
type fakeMarketplace struct {
	target     string
	catalog    []integration.CatalogEntry
	catalogErr error
	stockLimit int
	priceLimit int
	// stockErrs and priceErrs fail the call with the given index
	stockErrs map[int]error
	priceErrs map[int]error
	// updateErr fails every update call
	updateErr error
	// reject maps a SKU to the reason the platform rejects it with
	reject map[string]string

	catalogCalls int
	stockCalls   [][]integration.StockUpdate
	priceCalls   [][]integration.PriceUpdate
}

var _ integration.Marketplace = (*fakeMarketplace)(nil)

func (f *fakeMarketplace) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeOzon
}

func (f *fakeMarketplace) Target() string {
	if f.target == "" {
		return "ozon:test"
	}
	return f.target
}

func (f *fakeMarketplace) ListCatalog(ctx context.Context) ([]integration.CatalogEntry, error) {
	f.catalogCalls++
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeMarketplace) StockBatchLimit() int {
	return f.stockLimit
}

func (f *fakeMarketplace) PriceBatchLimit() int {
	return f.priceLimit
}

func (f *fakeMarketplace) UpdateStocks(ctx context.Context, batch []integration.StockUpdate) (*integration.BatchResult, error) {
	idx := len(f.stockCalls)
	f.stockCalls = append(f.stockCalls, append([]integration.StockUpdate(nil), batch...))
	if err := f.stockErrs[idx]; err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	result := integration.NewBatchResult(integration.UpdateKindStock, len(batch))
	for _, item := range batch {
		if reason, ok := f.reject[item.SKU]; ok {
			result.RecordFailure(integration.SyncFailure{ItemID: item.SKU, ErrorCode: "REJECTED", ErrorMessage: reason})
		}
	}
	return result.Finalize(), nil
}

func (f *fakeMarketplace) UpdatePrices(ctx context.Context, batch []integration.PriceUpdate) (*integration.BatchResult, error) {
	idx := len(f.priceCalls)
	f.priceCalls = append(f.priceCalls, append([]integration.PriceUpdate(nil), batch...))
	if err := f.priceErrs[idx]; err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	result := integration.NewBatchResult(integration.UpdateKindPrice, len(batch))
	for _, item := range batch {
		if reason, ok := f.reject[item.SKU]; ok {
			result.RecordFailure(integration.SyncFailure{ItemID: item.SKU, ErrorCode: "REJECTED", ErrorMessage: reason})
		}
	}
	return result.Finalize(), nil
}

func (f *fakeMarketplace) stockItems() []integration.StockUpdate {
	var all []integration.StockUpdate
	for _, call := range f.stockCalls {
		all = append(all, call...)
	}
	return all
}

func (f *fakeMarketplace) priceItems() []integration.PriceUpdate {
	var all []integration.PriceUpdate
	for _, call := range f.priceCalls {
		all = append(all, call...)
	}
	return all
}

// feedFixture builds n feed records SKU-000..; the first matched records
// are listed in the catalog together with extra catalog-only products
func feedFixture(n, matched, extra int, zeroPriceAt ...int) ([]integration.SourceRecord, []integration.CatalogEntry) {
	faker := gofakeit.New(7)
	zero := make(map[int]bool, len(zeroPriceAt))
	for _, i := range zeroPriceAt {
		zero[i] = true
	}

	records := make([]integration.SourceRecord, 0, n)
	catalog := make([]integration.CatalogEntry, 0, matched+extra)
	for i := 0; i < n; i++ {
		sku := fmt.Sprintf("SKU-%03d", i)
		price := decimal.NewFromInt(int64(faker.IntRange(100, 90000)))
		if zero[i] {
			price = decimal.Zero
		}
		records = append(records, integration.SourceRecord{
			SKU:           sku,
			StockQuantity: faker.IntRange(0, 50),
			BasePrice:     price,
		})
		if i < matched {
			catalog = append(catalog, integration.CatalogEntry{
				PlatformProductID: fmt.Sprintf("%d", 100000+i),
				SKU:               sku,
			})
		}
	}
	for i := 0; i < extra; i++ {
		catalog = append(catalog, integration.CatalogEntry{
			PlatformProductID: fmt.Sprintf("%d", 900000+i),
			SKU:               fmt.Sprintf("GONE-%03d", i),
		})
	}
	return records, catalog
}

func newTestTransformer(t *testing.T, maxStock int) *integration.Transformer {
	t.Helper()
	strategy, err := pricing.New(pricing.Settings{
		Markup:    pricing.MarkupNone,
		RoundStep: decimal.NewFromInt(1),
		RoundMode: "half_up",
	})
	require.NoError(t, err)
	return integration.NewTransformer(strategy, integration.StockPolicy{MaxStock: maxStock}, "RUB")
}
