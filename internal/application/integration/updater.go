package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/logger"
)

// Failure codes recorded for items of a batch the platform never accepted
const (
	FailureCodeAuth            = "AUTH_FAILED"
	FailureCodeRateLimited     = "RATE_LIMITED"
	FailureCodeUnavailable     = "UNAVAILABLE"
	FailureCodeInvalidResponse = "INVALID_RESPONSE"
	FailureCodeRequestFailed   = "REQUEST_FAILED"
	FailureCodeUnknown         = "UNKNOWN"
)

// UpdateOutcome is the result of submitting one target's payloads
type UpdateOutcome struct {
	Stock *integration.SyncResult
	Price *integration.SyncResult
}

// PlatformUpdater submits payloads to a marketplace in batches bounded by its limits.
// Stock batches go first, then price batches.
type PlatformUpdater struct {
	dryRun bool
	now    func() time.Time
}

// NewPlatformUpdater creates an updater; in dry-run mode no update call is made
func NewPlatformUpdater(dryRun bool) *PlatformUpdater {
	return &PlatformUpdater{dryRun: dryRun, now: time.Now}
}

// Submit sends stock updates for payloads and resets, then price updates for payloads.
//
// A batch the platform rejects item by item degrades to per-item failures. A batch
// that never reached the platform is recorded as failed and the next batch is tried.
// The returned error wraps integration.ErrPlatformUpdate when no batch could be
// submitted at all, or when authentication fails before any batch got through.
func (u *PlatformUpdater) Submit(
	ctx context.Context,
	m integration.Marketplace,
	payloads []integration.UpdatePayload,
	resets []integration.StockReset,
) (*UpdateOutcome, error) {
	stocks := make([]integration.StockUpdate, 0, len(payloads)+len(resets))
	prices := make([]integration.PriceUpdate, 0, len(payloads))
	for _, p := range payloads {
		stocks = append(stocks, p.StockUpdate())
		prices = append(prices, p.PriceUpdate())
	}
	for _, r := range resets {
		stocks = append(stocks, r.StockUpdate())
	}

	outcome := &UpdateOutcome{
		Stock: integration.NewSyncResult(len(stocks)),
		Price: integration.NewSyncResult(len(prices)),
	}

	if u.dryRun {
		log := logger.FromContext(ctx)
		for _, item := range stocks {
			log.Debug("dry run stock", zap.String("sku", item.SKU), zap.Int("stock", item.Stock))
		}
		for _, item := range prices {
			log.Debug("dry run price", zap.String("sku", item.SKU), zap.String("price", item.Price.String()))
		}
		log.Info("dry run, updates not sent",
			zap.Int("stock_items", len(stocks)),
			zap.Int("price_items", len(prices)),
		)
		now := u.now()
		outcome.Stock.Finish(now)
		outcome.Price.Finish(now)
		outcome.Stock.Status = integration.SyncStatusSkipped
		outcome.Price.Status = integration.SyncStatusSkipped
		return outcome, nil
	}

	b := &batcher{m: m, now: u.now}
	err := submitAll(ctx, b, integration.UpdateKindStock, stocks, m.StockBatchLimit(), outcome.Stock, m.UpdateStocks)
	if err == nil {
		err = submitAll(ctx, b, integration.UpdateKindPrice, prices, m.PriceBatchLimit(), outcome.Price, m.UpdatePrices)
	}

	now := u.now()
	outcome.Stock.Finish(now)
	outcome.Price.Finish(now)
	if err != nil {
		return outcome, err
	}

	if len(stocks)+len(prices) > 0 && b.submitted == 0 {
		return outcome, fmt.Errorf("%w: %s: no batch reached the platform: %v", integration.ErrPlatformUpdate, m.Target(), b.lastErr)
	}
	return outcome, nil
}

// batcher tracks submission state across the stock and price passes
type batcher struct {
	m         integration.Marketplace
	now       func() time.Time
	submitted int
	lastErr   error
}

func submitAll[T interface {
	integration.StockUpdate | integration.PriceUpdate
}](
	ctx context.Context,
	b *batcher,
	kind integration.UpdateKind,
	items []T,
	limit int,
	result *integration.SyncResult,
	send func(context.Context, []T) (*integration.BatchResult, error),
) error {
	if limit <= 0 {
		limit = len(items)
	}
	log := logger.FromContext(ctx)

	for index, start := 0, 0; start < len(items); index, start = index+1, start+limit {
		end := min(start+limit, len(items))
		chunk := items[start:end]

		br, err := send(ctx, chunk)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %s: %w", integration.ErrPlatformUpdate, b.m.Target(), ctxErr)
			}
			if errors.Is(err, integration.ErrPlatformAuthFailed) && b.submitted == 0 {
				return fmt.Errorf("%w: %s: %w", integration.ErrPlatformUpdate, b.m.Target(), err)
			}
			b.lastErr = err
			br = unsubmittedBatch(kind, skusOf(chunk), err)
			log.Warn("batch not submitted",
				zap.String("kind", string(kind)),
				zap.Int("batch", index),
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
		} else {
			b.submitted++
			br.Kind = kind
			log.Info("batch submitted",
				zap.String("kind", string(kind)),
				zap.Int("batch", index),
				zap.Int("size", br.Size),
				zap.Int("success", br.SuccessCount),
				zap.Int("failed", br.FailedCount),
			)
			for _, f := range br.Failures {
				log.Warn("item rejected",
					zap.String("kind", string(kind)),
					zap.String("sku", f.ItemID),
					zap.String("code", f.ErrorCode),
					zap.String("reason", f.ErrorMessage),
				)
			}
		}
		br.Index = index
		result.AddBatch(*br)
	}
	return nil
}

func skusOf[T interface {
	integration.StockUpdate | integration.PriceUpdate
}](items []T) []string {
	skus := make([]string, 0, len(items))
	for _, item := range items {
		switch v := any(item).(type) {
		case integration.StockUpdate:
			skus = append(skus, v.SKU)
		case integration.PriceUpdate:
			skus = append(skus, v.SKU)
		}
	}
	return skus
}

// unsubmittedBatch fails every item of a batch that never reached the platform
func unsubmittedBatch(kind integration.UpdateKind, skus []string, err error) *integration.BatchResult {
	br := integration.NewBatchResult(kind, len(skus))
	br.Submitted = false
	br.Error = err.Error()
	code := failureCode(err)
	for _, sku := range skus {
		br.RecordFailure(integration.SyncFailure{ItemID: sku, ErrorCode: code, ErrorMessage: err.Error()})
	}
	return br.Finalize()
}

func failureCode(err error) string {
	switch {
	case errors.Is(err, integration.ErrPlatformAuthFailed):
		return FailureCodeAuth
	case errors.Is(err, integration.ErrPlatformRateLimited):
		return FailureCodeRateLimited
	case errors.Is(err, integration.ErrPlatformUnavailable):
		return FailureCodeUnavailable
	case errors.Is(err, integration.ErrPlatformInvalidResponse):
		return FailureCodeInvalidResponse
	case errors.Is(err, integration.ErrPlatformRequestFailed):
		return FailureCodeRequestFailed
	default:
		return FailureCodeUnknown
	}
}
