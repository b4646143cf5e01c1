package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/logger"
)

const tracerName = "github.com/grigory-zhovtun/seller-apis/sync"

// Reporter receives the finished run summary (metrics push, report upload).
// Reporter errors are logged and never change the run outcome.
type Reporter interface {
	Name() string
	Report(ctx context.Context, summary *integration.RunSummary) error
}

// Options are the per-run business switches
type Options struct {
	Platform integration.PlatformCode
	// DryRun runs every stage but skips the update calls
	DryRun bool
	// ZeroMissingStock pushes stock 0 for catalog products absent from the feed
	ZeroMissingStock bool
}

// SyncService runs the fetch, match, transform and update pipeline once
type SyncService struct {
	feed        integration.SourceFeed
	targets     []integration.Marketplace
	transformer *integration.Transformer
	updater     *PlatformUpdater
	opts        Options
	reporters   []Reporter
	tracer      trace.Tracer
	logger      *zap.Logger
	now         func() time.Time
}

// ServiceOption is a functional option for SyncService
type ServiceOption func(*SyncService)

// WithReporters adds run summary reporters
func WithReporters(reporters ...Reporter) ServiceOption {
	return func(s *SyncService) {
		s.reporters = append(s.reporters, reporters...)
	}
}

// WithTracer overrides the tracer taken from the global provider
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(s *SyncService) {
		s.tracer = tracer
	}
}

// WithLogger sets the base logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *SyncService) {
		s.logger = l
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(s *SyncService) {
		s.now = now
		s.updater.now = now
	}
}

// NewSyncService creates a pipeline over one feed and one or more marketplace targets
func NewSyncService(
	feed integration.SourceFeed,
	targets []integration.Marketplace,
	transformer *integration.Transformer,
	opts Options,
	options ...ServiceOption,
) *SyncService {
	s := &SyncService{
		feed:        feed,
		targets:     targets,
		transformer: transformer,
		updater:     NewPlatformUpdater(opts.DryRun),
		opts:        opts,
		tracer:      otel.Tracer(tracerName),
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Run executes one sync run. The summary is always returned and logged, also
// when the run aborts; the error is non-nil only for fatal failures.
func (s *SyncService) Run(ctx context.Context) (summary *integration.RunSummary, err error) {
	summary = integration.NewRunSummary(s.opts.Platform, s.now())
	summary.DryRun = s.opts.DryRun

	ctx, span := s.tracer.Start(ctx, "sync.run", trace.WithAttributes(
		attribute.String("sync.run_id", summary.RunID.String()),
		attribute.String("sync.platform", string(s.opts.Platform)),
		attribute.Bool("sync.dry_run", s.opts.DryRun),
	))
	ctx, log := logger.WithRun(ctx, s.logger, summary.RunID.String(), string(s.opts.Platform))
	log.Info("sync run started",
		zap.Int("targets", len(s.targets)),
		zap.Bool("dry_run", s.opts.DryRun),
		zap.Bool("zero_missing_stock", s.opts.ZeroMissingStock),
	)

	defer func() {
		summary.FinishedAt = s.now()
		if err != nil {
			summary.Fail(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		totals := summary.Totals()
		span.SetAttributes(
			attribute.Int("sync.fetched", summary.Fetched),
			attribute.Int("sync.matched", totals.Matched),
			attribute.Int("sync.submitted", totals.Submitted),
		)
		LogSummary(log, summary)
		s.report(ctx, summary)
		span.End()
	}()

	if len(s.targets) == 0 {
		return summary, fmt.Errorf("%w: no marketplace target configured", integration.ErrConfiguration)
	}

	records, err := s.fetch(ctx, summary)
	if err != nil {
		return summary, err
	}

	for _, target := range s.targets {
		if err := s.syncTarget(ctx, target, records, summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *SyncService) fetch(ctx context.Context, summary *integration.RunSummary) ([]integration.SourceRecord, error) {
	ctx, span := s.tracer.Start(ctx, "sync.fetch_feed")
	defer span.End()

	snapshot, err := s.feed.FetchRecords(ctx)
	if err != nil {
		if !errors.Is(err, integration.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", integration.ErrSourceUnavailable, err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	summary.Fetched = len(snapshot.Records)
	summary.FeedRowsSkipped = snapshot.SkippedRows
	span.SetAttributes(attribute.Int("feed.records", summary.Fetched))
	logger.FromContext(ctx).Info("feed fetched",
		zap.Int("records", summary.Fetched),
		zap.Int("rows_skipped", snapshot.SkippedRows),
	)
	return snapshot.Records, nil
}

// syncTarget runs catalog, match, transform and update for one account or campaign
func (s *SyncService) syncTarget(
	ctx context.Context,
	m integration.Marketplace,
	records []integration.SourceRecord,
	summary *integration.RunSummary,
) error {
	ctx, span := s.tracer.Start(ctx, "sync.target", trace.WithAttributes(attribute.String("sync.target", m.Target())))
	defer span.End()
	ctx, log := logger.WithTarget(ctx, m.Target())
	ts := summary.AddTarget(m.Target())

	catalog, err := s.listCatalog(ctx, m)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	ts.CatalogSize = len(catalog)

	match := integration.MatchCatalog(records, catalog)
	ts.Matched = len(match.Matched)
	ts.Unmatched = len(match.UnmatchedSKUs)
	ts.UnmatchedSKUs = match.UnmatchedSKUs
	log.Info("catalog matched",
		zap.Int("catalog", len(catalog)),
		zap.Int("matched", ts.Matched),
		zap.Int("unmatched", ts.Unmatched),
		zap.Int("not_in_feed", len(match.Orphans)),
	)

	transformed := s.transformer.TransformAll(ctx, match.Matched)
	ts.Invalid = len(transformed.Invalid)
	ts.InvalidItems = transformed.Invalid
	for _, inv := range transformed.Invalid {
		log.Warn("record skipped", zap.String("sku", inv.SKU), zap.String("reason", inv.Reason))
	}

	var resets []integration.StockReset
	if s.opts.ZeroMissingStock {
		resets = match.StockResets()
	}
	ts.Reset = len(resets)
	if !s.opts.DryRun {
		ts.Submitted = len(transformed.Payloads)
	}

	outcome, err := s.updater.Submit(ctx, m, transformed.Payloads, resets)
	if outcome != nil {
		ts.Stock = outcome.Stock
		ts.Price = outcome.Price
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(
		attribute.Int("sync.matched", ts.Matched),
		attribute.Int("sync.submitted", ts.Submitted),
		attribute.Int("sync.stock_failed", ts.Stock.FailedCount),
		attribute.Int("sync.price_failed", ts.Price.FailedCount),
	)
	return nil
}

func (s *SyncService) listCatalog(ctx context.Context, m integration.Marketplace) ([]integration.CatalogEntry, error) {
	ctx, span := s.tracer.Start(ctx, "sync.list_catalog")
	defer span.End()

	catalog, err := m.ListCatalog(ctx)
	if err != nil {
		if !errors.Is(err, integration.ErrCatalogUnavailable) {
			err = fmt.Errorf("%w: %w", integration.ErrCatalogUnavailable, err)
		}
		return nil, fmt.Errorf("%s: %w", m.Target(), err)
	}
	span.SetAttributes(attribute.Int("catalog.size", len(catalog)))
	return catalog, nil
}

func (s *SyncService) report(ctx context.Context, summary *integration.RunSummary) {
	// reporters run after cancellation too; the summary must still leave the process
	ctx = context.WithoutCancel(ctx)
	for _, r := range s.reporters {
		if err := r.Report(ctx, summary); err != nil {
			logger.FromContext(ctx).Warn("run report failed", zap.String("reporter", r.Name()), zap.Error(err))
		}
	}
}
