package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncResult_Finish(t *testing.T) {
	now := time.Now()

	t.Run("all accepted", func(t *testing.T) {
		r := NewSyncResult(2)
		r.AddBatch(*NewBatchResult(UpdateKindStock, 2).Finalize())
		r.Finish(now)
		assert.Equal(t, SyncStatusSuccess, r.Status)
		assert.Equal(t, 2, r.SuccessCount)
		assert.Equal(t, now, r.SyncedAt)
	})

	t.Run("partial", func(t *testing.T) {
		r := NewSyncResult(3)
		b := NewBatchResult(UpdateKindPrice, 3)
		b.RecordFailure(SyncFailure{ItemID: "A", ErrorCode: "INVALID_PRICE", ErrorMessage: "too low"})
		r.AddBatch(*b.Finalize())
		r.Finish(now)
		assert.Equal(t, SyncStatusPartial, r.Status)
		assert.Equal(t, 2, r.SuccessCount)
		assert.Equal(t, 1, r.FailedCount)
		assert.Len(t, r.FailedItems, 1)
	})

	t.Run("nothing to send", func(t *testing.T) {
		r := NewSyncResult(0)
		r.Finish(now)
		assert.Equal(t, SyncStatusSkipped, r.Status)
	})

	t.Run("everything failed", func(t *testing.T) {
		r := NewSyncResult(1)
		b := NewBatchResult(UpdateKindStock, 1)
		b.Submitted = false
		b.RecordFailure(SyncFailure{ItemID: "A", ErrorMessage: "unreachable"})
		r.AddBatch(*b.Finalize())
		r.Finish(now)
		assert.Equal(t, SyncStatusFailed, r.Status)
		assert.Equal(t, 0, r.SubmittedBatches())
	})
}

func TestRunSummary_Totals(t *testing.T) {
	s := NewRunSummary(PlatformCodeYandexMarket, time.Now())
	fbs := s.AddTarget("fbs")
	fbs.Matched, fbs.Unmatched, fbs.Invalid, fbs.Submitted = 10, 2, 1, 9
	fbs.Stock = &SyncResult{SuccessCount: 9, Batches: []BatchResult{{}}}
	fbs.Price = &SyncResult{SuccessCount: 8, FailedCount: 1, Batches: []BatchResult{{}}}
	dbs := s.AddTarget("dbs")
	dbs.Matched, dbs.Reset, dbs.Submitted = 4, 3, 4

	totals := s.Totals()

	assert.Equal(t, 14, totals.Matched)
	assert.Equal(t, 2, totals.Unmatched)
	assert.Equal(t, 1, totals.Invalid)
	assert.Equal(t, 3, totals.Reset)
	assert.Equal(t, 13, totals.Submitted)
	assert.Equal(t, 9, totals.StockUpdated)
	assert.Equal(t, 8, totals.PriceUpdated)
	assert.Equal(t, 1, totals.PriceFailed)
	assert.Equal(t, 2, totals.Batches)
}

func TestPlatformCode(t *testing.T) {
	assert.True(t, PlatformCodeOzon.IsValid())
	assert.True(t, PlatformCodeYandexMarket.IsValid())
	assert.False(t, PlatformCode("WILDBERRIES").IsValid())
	assert.Equal(t, "Ozon", PlatformCodeOzon.DisplayName())
}
