package integration

import (
	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// maxLoggedSKUs bounds the SKU lists written to the summary line
const maxLoggedSKUs = 50

// LogSummary emits the run summary as one structured line plus one line per target.
// log is expected to carry run_id and platform already.
func LogSummary(log *zap.Logger, s *integration.RunSummary) {
	totals := s.Totals()
	fields := []zap.Field{
		zap.Bool("dry_run", s.DryRun),
		zap.Duration("duration", s.Duration()),
		zap.Int("fetched", s.Fetched),
		zap.Int("feed_rows_skipped", s.FeedRowsSkipped),
		zap.Int("matched", totals.Matched),
		zap.Int("unmatched", totals.Unmatched),
		zap.Int("invalid", totals.Invalid),
		zap.Int("reset", totals.Reset),
		zap.Int("submitted", totals.Submitted),
		zap.Int("stock_updated", totals.StockUpdated),
		zap.Int("stock_failed", totals.StockFailed),
		zap.Int("price_updated", totals.PriceUpdated),
		zap.Int("price_failed", totals.PriceFailed),
		zap.Int("batches", totals.Batches),
	}

	for _, t := range s.Targets {
		targetFields := []zap.Field{
			zap.String("target", t.Target),
			zap.Int("catalog", t.CatalogSize),
			zap.Int("matched", t.Matched),
			zap.Int("unmatched", t.Unmatched),
			zap.Strings("unmatched_skus", head(t.UnmatchedSKUs, maxLoggedSKUs)),
			zap.Int("invalid", t.Invalid),
			zap.Int("reset", t.Reset),
			zap.Int("submitted", t.Submitted),
		}
		if t.Stock != nil {
			targetFields = append(targetFields,
				zap.String("stock_status", t.Stock.Status.String()),
				zap.Int("stock_failed", t.Stock.FailedCount),
			)
		}
		if t.Price != nil {
			targetFields = append(targetFields,
				zap.String("price_status", t.Price.Status.String()),
				zap.Int("price_failed", t.Price.FailedCount),
			)
		}
		log.Info("target summary", targetFields...)
	}

	if s.FatalError != "" {
		log.Error("sync run aborted", append(fields, zap.String("fatal_error", s.FatalError))...)
		return
	}
	log.Info("sync run finished", fields...)
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
