// Package metrics pushes run metrics to a Prometheus Pushgateway.
// A sync run is a batch job, so metrics are pushed once at the end instead of scraped.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// Namespace prefixes every metric name
const Namespace = "seller_sync"

// PushReporterConfig configures the Pushgateway reporter
type PushReporterConfig struct {
	// URL is the Pushgateway base URL
	URL string
	// JobName is the job label of the pushed group
	JobName string
	// Timeout bounds one push; defaults to 10s
	Timeout time.Duration
	// HTTPClient overrides the default client
	HTTPClient *http.Client
}

// PushReporter records a RunSummary into its own registry and pushes it.
// The group is keyed by job and platform, so Ozon and Yandex runs do not overwrite each other.
type PushReporter struct {
	config   PushReporterConfig
	registry *prometheus.Registry

	lastRun  prometheus.Gauge
	duration prometheus.Gauge
	success  prometheus.Gauge
	dryRun   prometheus.Gauge
	fetched  prometheus.Gauge
	skipped  prometheus.Gauge
	records  *prometheus.GaugeVec
	items    *prometheus.GaugeVec
	batches  *prometheus.GaugeVec
}

// NewPushReporter creates a reporter with a dedicated registry
func NewPushReporter(config PushReporterConfig) (*PushReporter, error) {
	if config.URL == "" {
		return nil, errors.New("metrics: pushgateway URL is required")
	}
	if config.JobName == "" {
		config.JobName = "seller_apis_sync"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	r := &PushReporter{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	r.initMetrics()
	return r, nil
}

func (r *PushReporter) initMetrics() {
	r.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last sync run finished.",
	})
	r.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Duration of the last sync run.",
	})
	r.success = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_run_success",
		Help:      "1 if the last sync run completed without a fatal error, 0 otherwise.",
	})
	r.dryRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_run_dry_run",
		Help:      "1 if the last sync run skipped the update calls.",
	})
	r.fetched = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "feed_records",
		Help:      "Records read from the source feed.",
	})
	r.skipped = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "feed_rows_skipped",
		Help:      "Feed rows dropped while parsing.",
	})
	r.records = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "records",
		Help:      "Records per pipeline stage and target.",
	}, []string{"target", "stage"})
	r.items = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "update_items",
		Help:      "Update items per target, kind and result.",
	}, []string{"target", "kind", "result"})
	r.batches = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "update_batches",
		Help:      "Update calls per target, kind and whether they reached the platform.",
	}, []string{"target", "kind", "submitted"})

	r.registry.MustRegister(
		r.lastRun, r.duration, r.success, r.dryRun, r.fetched, r.skipped,
		r.records, r.items, r.batches,
	)
}

// Name implements the run reporter contract
func (r *PushReporter) Name() string {
	return "pushgateway"
}

// Report records the summary and pushes it, replacing the previous group
func (r *PushReporter) Report(ctx context.Context, summary *integration.RunSummary) error {
	r.Observe(summary)

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	err := push.New(r.config.URL, r.config.JobName).
		Client(r.config.HTTPClient).
		Gatherer(r.registry).
		Grouping("platform", string(summary.Platform)).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("metrics: push to %s: %w", r.config.URL, err)
	}
	return nil
}

// Observe sets every gauge from the summary
func (r *PushReporter) Observe(summary *integration.RunSummary) {
	r.records.Reset()
	r.items.Reset()
	r.batches.Reset()

	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	r.lastRun.Set(float64(finished.Unix()))
	r.duration.Set(summary.Duration().Seconds())
	r.success.Set(boolValue(summary.FatalError == ""))
	r.dryRun.Set(boolValue(summary.DryRun))
	r.fetched.Set(float64(summary.Fetched))
	r.skipped.Set(float64(summary.FeedRowsSkipped))

	for _, t := range summary.Targets {
		r.records.WithLabelValues(t.Target, "catalog").Set(float64(t.CatalogSize))
		r.records.WithLabelValues(t.Target, "matched").Set(float64(t.Matched))
		r.records.WithLabelValues(t.Target, "unmatched").Set(float64(t.Unmatched))
		r.records.WithLabelValues(t.Target, "invalid").Set(float64(t.Invalid))
		r.records.WithLabelValues(t.Target, "reset").Set(float64(t.Reset))
		r.records.WithLabelValues(t.Target, "submitted").Set(float64(t.Submitted))
		r.observeResult(t.Target, integration.UpdateKindStock, t.Stock)
		r.observeResult(t.Target, integration.UpdateKindPrice, t.Price)
	}
}

func (r *PushReporter) observeResult(target string, kind integration.UpdateKind, result *integration.SyncResult) {
	if result == nil {
		return
	}
	r.items.WithLabelValues(target, string(kind), "updated").Set(float64(result.SuccessCount))
	r.items.WithLabelValues(target, string(kind), "failed").Set(float64(result.FailedCount))

	submitted := result.SubmittedBatches()
	r.batches.WithLabelValues(target, string(kind), "true").Set(float64(submitted))
	r.batches.WithLabelValues(target, string(kind), "false").Set(float64(len(result.Batches) - submitted))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
