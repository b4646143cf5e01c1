// Package feed downloads the distributor stock feed and turns it into source records.
package feed

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
)

// Config configures a Reader
type Config struct {
	URL      string
	Username string
	Password string
	Token    string
	Format   string
	Encoding string
	// CSVDelimiter is a single character
	CSVDelimiter string
	MaxBytes     int64
	Layout       Layout
	Stock        StockRules
}

// Reader fetches the feed over HTTP
type Reader struct {
	cfg    Config
	client *httpclient.Client
	logger *zap.Logger
	now    func() time.Time
}

// Ensure Reader implements the SourceFeed interface
var _ integration.SourceFeed = (*Reader)(nil)

// NewReader creates a Reader. The client's base URL is only used for relative feed URLs.
func NewReader(cfg Config, client *httpclient.Client, logger *zap.Logger) (*Reader, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: feed URL is required", integration.ErrConfiguration)
	}
	if cfg.CSVDelimiter != "" && utf8.RuneCountInString(cfg.CSVDelimiter) != 1 {
		return nil, fmt.Errorf("%w: CSV delimiter must be one character", integration.ErrConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{cfg: cfg, client: client, logger: logger.Named("feed"), now: time.Now}, nil
}

// FetchRecords downloads and parses the feed. Every failure wraps integration.ErrSourceUnavailable.
func (r *Reader) FetchRecords(ctx context.Context) (*integration.FeedSnapshot, error) {
	start := r.now()
	data, err := r.client.Download(ctx, r.cfg.URL, r.authHeaders(), r.cfg.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", integration.ErrSourceUnavailable, err)
	}

	var delimiter rune
	if r.cfg.CSVDelimiter != "" {
		delimiter, _ = utf8.DecodeRuneInString(r.cfg.CSVDelimiter)
	}
	rows, err := DecodeSheet(fileName(r.cfg.URL), data, DecodeOptions{
		Format:        r.cfg.Format,
		Encoding:      r.cfg.Encoding,
		CSVDelimiter:  delimiter,
		MaxEntryBytes: r.cfg.MaxBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrSourceUnavailable, err)
	}

	table, err := ReadTable(rows, r.cfg.Layout, r.cfg.Stock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrSourceUnavailable, err)
	}
	if len(table.Records) == 0 {
		return nil, fmt.Errorf("%w: %v: no product rows", integration.ErrSourceUnavailable, ErrMalformedFeed)
	}

	r.logger.Info("feed parsed",
		zap.Int("bytes", len(data)),
		zap.Int("rows", len(rows)),
		zap.Int("records", len(table.Records)),
		zap.Int("skipped", table.SkippedRows),
		zap.Duration("duration", r.now().Sub(start)),
	)

	return &integration.FeedSnapshot{
		Records:     table.Records,
		SkippedRows: table.SkippedRows,
		FetchedAt:   start,
	}, nil
}

func (r *Reader) authHeaders() map[string]string {
	switch {
	case r.cfg.Token != "":
		return map[string]string{"Authorization": "Bearer " + r.cfg.Token}
	case r.cfg.Username != "":
		creds := base64.StdEncoding.EncodeToString([]byte(r.cfg.Username + ":" + r.cfg.Password))
		return map[string]string{"Authorization": "Basic " + creds}
	}
	return nil
}

func fileName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
