package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
)

func newFeedReader(t *testing.T, srv *httptest.Server, cfg Config) *Reader {
	t.Helper()
	client, err := httpclient.New(httpclient.Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Retry:   httpclient.RetryConfig{MaxRetries: 1, RetryDelay: time.Millisecond},
	})
	require.NoError(t, err)
	if cfg.URL == "" {
		cfg.URL = srv.URL + "/upload/files/ostatki.zip"
	}
	if cfg.Layout == (Layout{}) {
		cfg.Layout = Layout{HeaderRow: 1, SKUColumn: "Код", StockColumn: "Количество", PriceColumn: "Цена"}
	}
	if cfg.Stock == (StockRules{}) {
		cfg.Stock = DefaultStockRules()
	}
	reader, err := NewReader(cfg, client, nil)
	require.NoError(t, err)
	return reader
}

func fakeFeedCSV(t *testing.T, n int) (string, []string) {
	t.Helper()
	faker := gofakeit.New(42)
	var sb strings.Builder
	sb.WriteString("Прайс-лист\nКод,Наименование,Количество,Цена\n")
	skus := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sku := fmt.Sprintf("TW-%05d", i+1)
		skus = append(skus, sku)
		name := strings.ReplaceAll(faker.ProductName(), `"`, `""`)
		fmt.Fprintf(&sb, "%s,\"%s\",%d,%d.00\n", sku, name, faker.IntRange(2, 10), faker.IntRange(500, 90000))
	}
	return sb.String(), skus
}

func TestReader_FetchRecords_Zip(t *testing.T) {
	csvData, skus := fakeFeedCSV(t, 25)
	payload := zipOf(t, map[string][]byte{"ostatki.csv": []byte(csvData)})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/files/ostatki.zip", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	snapshot, err := newFeedReader(t, srv, Config{}).FetchRecords(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Records, 25)
	for i, rec := range snapshot.Records {
		assert.Equal(t, skus[i], rec.SKU)
		assert.True(t, rec.BasePrice.IsPositive())
		assert.GreaterOrEqual(t, rec.StockQuantity, 2)
	}
	assert.Zero(t, snapshot.SkippedRows)
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestReader_FetchRecords_ZippedXLS(t *testing.T) {
	payload := zipOf(t, map[string][]byte{"ostatki.xls": readOstatkiXLS(t)})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	snapshot, err := newFeedReader(t, srv, Config{Layout: DefaultLayout()}).FetchRecords(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Records, 3)
	first := snapshot.Records[0]
	assert.Equal(t, "123456", first.SKU)
	assert.Equal(t, 100, first.StockQuantity)
	assert.True(t, first.BasePrice.Equal(decimal.NewFromInt(5990)))
	assert.Equal(t, 1, snapshot.SkippedRows)
}

func TestReader_FetchRecords_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "dealer" || pass != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("x\nКод,Количество,Цена\nA1,>10,100\n"))
	}))
	defer srv.Close()

	snapshot, err := newFeedReader(t, srv, Config{URL: srv.URL + "/feed.csv", Username: "dealer", Password: "pw"}).FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Records, 1)
	assert.Equal(t, 100, snapshot.Records[0].StockQuantity)

	_, err = newFeedReader(t, srv, Config{URL: srv.URL + "/feed.csv"}).FetchRecords(context.Background())
	assert.ErrorIs(t, err, integration.ErrSourceUnavailable)
}

func TestReader_FetchRecords_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer feed-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("x\nКод,Количество,Цена\nA1,3,100\n"))
	}))
	defer srv.Close()

	_, err := newFeedReader(t, srv, Config{URL: srv.URL + "/feed.csv", Token: "feed-token"}).FetchRecords(context.Background())
	require.NoError(t, err)
}

func TestReader_FetchRecords_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
		},
		{
			name:    "html instead of feed",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html><body>maintenance</body></html>")) },
		},
		{
			name:    "header only",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("x\nКод,Количество,Цена\n")) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			snapshot, err := newFeedReader(t, srv, Config{URL: srv.URL + "/feed.csv"}).FetchRecords(context.Background())
			assert.Nil(t, snapshot)
			assert.ErrorIs(t, err, integration.ErrSourceUnavailable)
		})
	}
}

func TestReader_FetchRecords_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	reader := newFeedReader(t, srv, Config{})
	srv.Close()

	_, err := reader.FetchRecords(context.Background())
	assert.ErrorIs(t, err, integration.ErrSourceUnavailable)
}

func TestNewReader_Validation(t *testing.T) {
	_, err := NewReader(Config{}, nil, nil)
	assert.ErrorIs(t, err, integration.ErrConfiguration)

	_, err = NewReader(Config{URL: "https://example.com/f.csv", CSVDelimiter: ";;"}, nil, nil)
	assert.ErrorIs(t, err, integration.ErrConfiguration)
}
