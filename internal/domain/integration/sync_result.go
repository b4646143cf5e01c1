package integration

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncStatus represents the synchronization status
// ---------------------------------------------------------------------------

// SyncStatus represents the synchronization status
type SyncStatus string

const (
	// SyncStatusPending indicates nothing was submitted yet
	SyncStatusPending SyncStatus = "PENDING"
	// SyncStatusSuccess indicates every item was accepted
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates partial sync success
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates sync failed
	SyncStatusFailed SyncStatus = "FAILED"
	// SyncStatusSkipped indicates the update was not sent (dry run or empty input)
	SyncStatusSkipped SyncStatus = "SKIPPED"
)

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// UpdateKind distinguishes stock and price update calls
type UpdateKind string

const (
	UpdateKindStock UpdateKind = "stock"
	UpdateKindPrice UpdateKind = "price"
)

// SyncFailure represents a failed sync item
type SyncFailure struct {
	// ItemID is the SKU (offer identifier) of the failed item
	ItemID string `json:"item_id"`
	// ErrorCode is the platform error code
	ErrorCode string `json:"error_code,omitempty"`
	// ErrorMessage is the error description
	ErrorMessage string `json:"error_message"`
}

// BatchResult is the platform's answer to one update call
type BatchResult struct {
	Kind         UpdateKind    `json:"kind"`
	Index        int           `json:"index"`
	Size         int           `json:"size"`
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	Failures     []SyncFailure `json:"failures,omitempty"`
	// Submitted is false when the batch never reached the platform
	Submitted bool   `json:"submitted"`
	Error     string `json:"error,omitempty"`
}

// NewBatchResult creates an accepted batch result with no failures yet
func NewBatchResult(kind UpdateKind, size int) *BatchResult {
	return &BatchResult{
		Kind:      kind,
		Size:      size,
		Failures:  make([]SyncFailure, 0),
		Submitted: true,
	}
}

// RecordFailure records a rejected item
func (b *BatchResult) RecordFailure(f SyncFailure) {
	b.FailedCount++
	b.Failures = append(b.Failures, f)
}

// Finalize derives the success count from the batch size
func (b *BatchResult) Finalize() *BatchResult {
	b.SuccessCount = b.Size - b.FailedCount
	if b.SuccessCount < 0 {
		b.SuccessCount = 0
	}
	return b
}

// SyncResult aggregates every batch of one kind for one target
type SyncResult struct {
	// Status is the overall sync status
	Status SyncStatus `json:"status"`
	// TotalCount is the total number of items to sync
	TotalCount int `json:"total_count"`
	// SuccessCount is the number of successfully synced items
	SuccessCount int `json:"success_count"`
	// FailedCount is the number of failed items
	FailedCount int `json:"failed_count"`
	// FailedItems contains details about failed items
	FailedItems []SyncFailure `json:"failed_items,omitempty"`
	// Batches holds the per-call results in submission order
	Batches []BatchResult `json:"batches,omitempty"`
	// SyncedAt is when the sync completed
	SyncedAt time.Time `json:"synced_at"`
}

// NewSyncResult creates an empty result for totalCount items
func NewSyncResult(totalCount int) *SyncResult {
	return &SyncResult{
		Status:      SyncStatusPending,
		TotalCount:  totalCount,
		FailedItems: make([]SyncFailure, 0),
		Batches:     make([]BatchResult, 0),
	}
}

// AddBatch folds one batch result into the aggregate
func (r *SyncResult) AddBatch(b BatchResult) {
	r.Batches = append(r.Batches, b)
	r.SuccessCount += b.SuccessCount
	r.FailedCount += b.FailedCount
	r.FailedItems = append(r.FailedItems, b.Failures...)
}

// SubmittedBatches counts batches that reached the platform
func (r *SyncResult) SubmittedBatches() int {
	n := 0
	for _, b := range r.Batches {
		if b.Submitted {
			n++
		}
	}
	return n
}

// Finish sets the final status and timestamp
func (r *SyncResult) Finish(now time.Time) {
	r.SyncedAt = now
	switch {
	case r.TotalCount == 0:
		r.Status = SyncStatusSkipped
	case r.FailedCount == 0:
		r.Status = SyncStatusSuccess
	case r.SuccessCount > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
}

// ---------------------------------------------------------------------------
// Run summary
// ---------------------------------------------------------------------------

// InvalidRecord is a matched record excluded by the transformer
type InvalidRecord struct {
	SKU    string `json:"sku"`
	Reason string `json:"reason"`
}

// TargetSummary holds the counts for one seller account or campaign
type TargetSummary struct {
	Target        string          `json:"target"`
	CatalogSize   int             `json:"catalog_size"`
	Matched       int             `json:"matched"`
	Unmatched     int             `json:"unmatched"`
	UnmatchedSKUs []string        `json:"unmatched_skus,omitempty"`
	Invalid       int             `json:"invalid"`
	InvalidItems  []InvalidRecord `json:"invalid_items,omitempty"`
	Reset         int             `json:"reset"`
	Submitted     int             `json:"submitted"`
	Stock         *SyncResult     `json:"stock,omitempty"`
	Price         *SyncResult     `json:"price,omitempty"`
}

// RunSummary is accumulated by every stage and emitted once per run
type RunSummary struct {
	RunID           uuid.UUID        `json:"run_id"`
	Platform        PlatformCode     `json:"platform"`
	DryRun          bool             `json:"dry_run"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
	Fetched         int              `json:"fetched"`
	FeedRowsSkipped int              `json:"feed_rows_skipped"`
	Targets         []*TargetSummary `json:"targets"`
	FatalError      string           `json:"fatal_error,omitempty"`
}

// NewRunSummary starts a summary for a run on the given platform
func NewRunSummary(platform PlatformCode, startedAt time.Time) *RunSummary {
	return &RunSummary{
		RunID:     uuid.New(),
		Platform:  platform,
		StartedAt: startedAt,
		Targets:   make([]*TargetSummary, 0),
	}
}

// AddTarget registers and returns a new per-target summary
func (s *RunSummary) AddTarget(target string) *TargetSummary {
	t := &TargetSummary{Target: target}
	s.Targets = append(s.Targets, t)
	return t
}

// Fail records the fatal error that aborted the run
func (s *RunSummary) Fail(err error) {
	if err != nil {
		s.FatalError = err.Error()
	}
}

// Duration returns how long the run took
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunTotals are the summary counts summed over all targets
type RunTotals struct {
	Matched      int
	Unmatched    int
	Invalid      int
	Reset        int
	Submitted    int
	StockUpdated int
	StockFailed  int
	PriceUpdated int
	PriceFailed  int
	Batches      int
}

// Totals sums the per-target counts
func (s *RunSummary) Totals() RunTotals {
	var t RunTotals
	for _, ts := range s.Targets {
		t.Matched += ts.Matched
		t.Unmatched += ts.Unmatched
		t.Invalid += ts.Invalid
		t.Reset += ts.Reset
		t.Submitted += ts.Submitted
		if ts.Stock != nil {
			t.StockUpdated += ts.Stock.SuccessCount
			t.StockFailed += ts.Stock.FailedCount
			t.Batches += len(ts.Stock.Batches)
		}
		if ts.Price != nil {
			t.PriceUpdated += ts.Price.SuccessCount
			t.PriceFailed += ts.Price.FailedCount
			t.Batches += len(ts.Price.Batches)
		}
	}
	return t
}
