// Package bootstrap wires configuration into a runnable sync service for the CLIs.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appintegration "github.com/grigory-zhovtun/seller-apis/internal/application/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/config"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/ecommerce"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/feed"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/logger"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/metrics"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/storage"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/strategy/pricing"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/telemetry"
)

// Process exit codes
const (
	ExitOK     = 0
	ExitFatal  = 1
	ExitConfig = 2
)

// Currency of every price sent to the marketplaces
const Currency = "RUB"

// Run loads configuration, performs one sync run for platform and returns the exit code
func Run(platform integration.PlatformCode) int {
	cfg, err := config.Load(platform)
	if err != nil {
		LogConfigError(logger.NewWithWriter(logger.DefaultConfig(), os.Stderr), platform, err)
		return ExitConfig
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		stderr := logger.NewWithWriter(logger.DefaultConfig(), os.Stderr)
		stderr.Error("failed to initialize logger", zap.Error(err))
		return ExitConfig
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	LogOptions(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			_ = tp.Shutdown(context.Background())
		}()
	}

	svc, err := NewSyncService(ctx, cfg, platform, log)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return ExitConfig
	}

	_, err = svc.Run(ctx)
	return ExitCode(err)
}

// ExitCode maps a run error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, integration.ErrConfiguration):
		return ExitConfig
	default:
		return ExitFatal
	}
}

// LogOptions logs every recognized option with secrets masked
func LogOptions(log *zap.Logger, cfg *config.Config) {
	fields := make([]zap.Field, 0, len(cfg.RecognizedOptions()))
	for _, opt := range cfg.RecognizedOptions() {
		fields = append(fields, zap.String(opt.Key, opt.Value))
	}
	log.Info("configuration loaded", fields...)
}

// LogConfigError reports a failed configuration load together with every
// recognized option keyed by its environment variable
func LogConfigError(log *zap.Logger, platform integration.PlatformCode, err error) {
	log.Error("invalid configuration", zap.String("platform", string(platform)), zap.Error(err))

	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		return
	}
	fields := make([]zap.Field, 0, len(cfgErr.Options))
	for _, opt := range cfgErr.Options {
		fields = append(fields, zap.String(opt.Env, opt.Value))
	}
	log.Info("recognized options", fields...)
}

// NewSyncService builds the feed reader, the platform targets, the transformer and the reporters
func NewSyncService(
	ctx context.Context,
	cfg *config.Config,
	platform integration.PlatformCode,
	log *zap.Logger,
) (*appintegration.SyncService, error) {
	httpCfg := HTTPConfig(cfg.HTTP, log)

	reader, err := NewFeedReader(cfg.Feed, httpCfg, log)
	if err != nil {
		return nil, err
	}

	transformer, err := NewTransformer(cfg.Pricing, cfg.Sync)
	if err != nil {
		return nil, err
	}

	targets, err := NewTargets(cfg, platform, httpCfg, log)
	if err != nil {
		return nil, err
	}

	reporters, err := NewReporters(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return appintegration.NewSyncService(reader, targets, transformer,
		appintegration.Options{
			Platform:         platform,
			DryRun:           cfg.Sync.DryRun,
			ZeroMissingStock: cfg.Sync.ZeroMissingStock,
		},
		appintegration.WithLogger(log),
		appintegration.WithReporters(reporters...),
	), nil
}

// HTTPConfig is the timeout, retry and rate-limit policy shared by every outbound client
func HTTPConfig(c config.HTTPConfig, log *zap.Logger) httpclient.Config {
	retry := httpclient.DefaultRetryConfig()
	retry.MaxRetries = c.MaxRetries
	retry.RetryDelay = c.RetryDelay
	retry.MaxDelay = c.MaxRetryDelay

	return httpclient.Config{
		Timeout:        c.Timeout,
		UserAgent:      c.UserAgent,
		Retry:          retry,
		RateLimitQPS:   c.RateLimitQPS,
		RateLimitBurst: c.RateLimitBurst,
		Logger:         log.Named("http"),
	}
}

// NewFeedReader creates the distributor feed reader
func NewFeedReader(c config.FeedConfig, httpCfg httpclient.Config, log *zap.Logger) (*feed.Reader, error) {
	httpCfg.BaseURL = c.URL
	client, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: feed: %v", integration.ErrConfiguration, err)
	}
	return feed.NewReader(feed.Config{
		URL:          c.URL,
		Username:     c.Username,
		Password:     c.Password,
		Token:        c.Token,
		Format:       c.Format,
		Encoding:     c.Encoding,
		CSVDelimiter: c.CSVDelimiter,
		MaxBytes:     int64(c.MaxSizeMB) << 20,
		Layout: feed.Layout{
			HeaderRow:   c.HeaderRow,
			SKUColumn:   c.SKUColumn,
			StockColumn: c.StockColumn,
			PriceColumn: c.PriceColumn,
		},
		Stock: feed.StockRules{
			OverflowMarker:   c.OverflowMarker,
			OverflowStock:    c.OverflowStock,
			ReserveThreshold: c.ReserveThreshold,
		},
	}, client, log)
}

// NewTransformer creates the transformer from the pricing and stock settings
func NewTransformer(p config.PricingConfig, s config.SyncConfig) (*integration.Transformer, error) {
	strategy, err := pricing.New(pricing.Settings{
		Markup:    p.Markup,
		Value:     p.MarkupValueDecimal(),
		RoundStep: p.RoundStepDecimal(),
		RoundMode: p.RoundMode,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrConfiguration, err)
	}
	return integration.NewTransformer(strategy, integration.StockPolicy{MaxStock: s.MaxStock}, Currency), nil
}

// NewTargets creates one adapter for Ozon, or one per configured Yandex campaign
func NewTargets(
	cfg *config.Config,
	platform integration.PlatformCode,
	httpCfg httpclient.Config,
	log *zap.Logger,
) ([]integration.Marketplace, error) {
	switch platform {
	case integration.PlatformCodeOzon:
		oc := ecommerce.NewOzonConfig(cfg.Ozon.ClientID, cfg.Ozon.APIKey)
		oc.APIBaseURL = cfg.Ozon.BaseURL
		oc.StockBatchSize = cfg.Ozon.StockBatchSize
		oc.PriceBatchSize = cfg.Ozon.PriceBatchSize
		oc.PageSize = cfg.Ozon.PageSize
		adapter, err := ecommerce.NewOzonAdapter(oc, httpCfg, log)
		if err != nil {
			return nil, err
		}
		return []integration.Marketplace{adapter}, nil

	case integration.PlatformCodeYandexMarket:
		campaigns := cfg.Yandex.Campaigns()
		targets := make([]integration.Marketplace, 0, len(campaigns))
		for _, c := range campaigns {
			yc := ecommerce.NewYandexConfig(cfg.Yandex.Token, c.Name, c.CampaignID, c.WarehouseID)
			yc.APIBaseURL = cfg.Yandex.BaseURL
			yc.StockBatchSize = cfg.Yandex.StockBatchSize
			yc.PriceBatchSize = cfg.Yandex.PriceBatchSize
			yc.PageSize = cfg.Yandex.PageSize
			adapter, err := ecommerce.NewYandexAdapter(yc, httpCfg, log)
			if err != nil {
				return nil, err
			}
			targets = append(targets, adapter)
		}
		return targets, nil

	default:
		return nil, fmt.Errorf("%w: unsupported platform %q", integration.ErrConfiguration, platform)
	}
}

// NewReporters creates the optional Pushgateway and S3 reporters
func NewReporters(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]appintegration.Reporter, error) {
	var reporters []appintegration.Reporter

	if cfg.Metrics.PushgatewayURL != "" {
		r, err := metrics.NewPushReporter(metrics.PushReporterConfig{
			URL:     cfg.Metrics.PushgatewayURL,
			JobName: cfg.Metrics.JobName,
			Timeout: cfg.HTTP.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrConfiguration, err)
		}
		reporters = append(reporters, r)
	}

	if cfg.Report.Enabled() {
		r, err := storage.NewReportStore(ctx, storage.Config{
			Bucket:       cfg.Report.S3Bucket,
			Prefix:       cfg.Report.S3Prefix,
			Endpoint:     cfg.Report.S3Endpoint,
			Region:       cfg.Report.S3Region,
			AccessKey:    cfg.Report.AccessKey,
			SecretKey:    cfg.Report.SecretKey,
			UsePathStyle: cfg.Report.UsePathStyle,
		}, storage.WithLogger(log.Named("report")))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrConfiguration, err)
		}
		reporters = append(reporters, r)
	}

	return reporters, nil
}
