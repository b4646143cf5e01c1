package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// EnvPrefix is the prefix of every canonical environment variable
const EnvPrefix = "SELLER"

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Ozon      OzonConfig      `mapstructure:"ozon"`
	Yandex    YandexConfig    `mapstructure:"yandex"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Report    ReportConfig    `mapstructure:"report"`

	options []OptionValue
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output" validate:"required"`
}

// HTTPConfig holds the outbound HTTP client policy shared by every API call
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelay     time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	MaxRetryDelay  time.Duration `mapstructure:"max_retry_delay" validate:"gte=0"`
	RateLimitQPS   float64       `mapstructure:"rate_limit_qps" validate:"gte=0"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" validate:"min=1"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// FeedConfig describes where the distributor feed lives and how to read it
type FeedConfig struct {
	URL              string `mapstructure:"url" validate:"required,url"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Token            string `mapstructure:"token"`
	Format           string `mapstructure:"format" validate:"oneof=auto xls xlsx csv"`
	HeaderRow        int    `mapstructure:"header_row" validate:"min=0"`
	SKUColumn        string `mapstructure:"sku_column" validate:"required"`
	StockColumn      string `mapstructure:"stock_column" validate:"required"`
	PriceColumn      string `mapstructure:"price_column" validate:"required"`
	OverflowMarker   string `mapstructure:"overflow_marker"`
	OverflowStock    int    `mapstructure:"overflow_stock" validate:"min=0"`
	ReserveThreshold int    `mapstructure:"reserve_threshold" validate:"min=0"`
	Encoding         string `mapstructure:"encoding" validate:"oneof=utf-8 windows-1251"`
	CSVDelimiter     string `mapstructure:"csv_delimiter" validate:"len=1"`
	MaxSizeMB        int    `mapstructure:"max_size_mb" validate:"min=1"`
}

// SyncConfig holds the business parameters of the stock pass
type SyncConfig struct {
	// MaxStock caps advertised stock; 0 disables the cap
	MaxStock int `mapstructure:"max_stock" validate:"min=0"`
	// ZeroMissingStock pushes stock 0 for catalog products absent from the feed
	ZeroMissingStock bool `mapstructure:"zero_missing_stock"`
	// DryRun runs every stage except the update calls
	DryRun bool `mapstructure:"dry_run"`
}

// PricingConfig holds the markup and rounding policy
type PricingConfig struct {
	Markup      string `mapstructure:"markup" validate:"oneof=none percent fixed"`
	MarkupValue string `mapstructure:"markup_value" validate:"required,numeric"`
	RoundStep   string `mapstructure:"round_step" validate:"required,numeric"`
	RoundMode   string `mapstructure:"round_mode" validate:"oneof=half_up up down"`
}

// MarkupValueDecimal returns the markup value as a decimal
func (p PricingConfig) MarkupValueDecimal() decimal.Decimal {
	return decimal.RequireFromString(p.MarkupValue)
}

// RoundStepDecimal returns the rounding step as a decimal
func (p PricingConfig) RoundStepDecimal() decimal.Decimal {
	return decimal.RequireFromString(p.RoundStep)
}

// OzonConfig holds Ozon Seller API credentials and limits
type OzonConfig struct {
	ClientID       string `mapstructure:"client_id" validate:"required"`
	APIKey         string `mapstructure:"api_key" validate:"required"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	StockBatchSize int    `mapstructure:"stock_batch_size" validate:"min=1,max=100"`
	PriceBatchSize int    `mapstructure:"price_batch_size" validate:"min=1,max=1000"`
	PageSize       int    `mapstructure:"page_size" validate:"min=1,max=1000"`
}

// YandexCampaignConfig is one Yandex Market campaign and its warehouse
type YandexCampaignConfig struct {
	CampaignID  string `mapstructure:"campaign_id" validate:"required_with=WarehouseID"`
	WarehouseID string `mapstructure:"warehouse_id" validate:"required_with=CampaignID"`
}

// IsSet returns true when the campaign is configured
func (c YandexCampaignConfig) IsSet() bool {
	return c.CampaignID != ""
}

// YandexConfig holds Yandex Market Partner API credentials and limits
type YandexConfig struct {
	Token          string               `mapstructure:"token" validate:"required"`
	BaseURL        string               `mapstructure:"base_url" validate:"required,url"`
	FBS            YandexCampaignConfig `mapstructure:"fbs"`
	DBS            YandexCampaignConfig `mapstructure:"dbs"`
	StockBatchSize int                  `mapstructure:"stock_batch_size" validate:"min=1,max=2000"`
	PriceBatchSize int                  `mapstructure:"price_batch_size" validate:"min=1,max=500"`
	PageSize       int                  `mapstructure:"page_size" validate:"min=1,max=200"`
}

// NamedCampaign is a configured campaign with its label
type NamedCampaign struct {
	Name string
	YandexCampaignConfig
}

// Campaigns returns the configured campaigns, FBS first
func (c YandexConfig) Campaigns() []NamedCampaign {
	campaigns := make([]NamedCampaign, 0, 2)
	if c.FBS.IsSet() {
		campaigns = append(campaigns, NamedCampaign{Name: "fbs", YandexCampaignConfig: c.FBS})
	}
	if c.DBS.IsSet() {
		campaigns = append(campaigns, NamedCampaign{Name: "dbs", YandexCampaignConfig: c.DBS})
	}
	return campaigns
}

// MetricsConfig holds Prometheus Pushgateway settings
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	JobName        string `mapstructure:"job_name" validate:"required"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SamplingRatio     float64 `mapstructure:"sampling_ratio" validate:"gte=0,lte=1"`
	ServiceName       string  `mapstructure:"service_name"`
	Insecure          bool    `mapstructure:"insecure"`
}

// ReportConfig holds the S3-compatible bucket receiving run summaries
type ReportConfig struct {
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Prefix     string `mapstructure:"s3_prefix"`
	S3Endpoint   string `mapstructure:"s3_endpoint"`
	S3Region     string `mapstructure:"s3_region"`
	AccessKey    string `mapstructure:"s3_access_key" validate:"required_with=S3Bucket"`
	SecretKey    string `mapstructure:"s3_secret_key" validate:"required_with=S3Bucket"`
	UsePathStyle bool   `mapstructure:"s3_use_path_style"`
}

// Enabled returns true when a report bucket is configured
func (r ReportConfig) Enabled() bool {
	return r.S3Bucket != ""
}

// Load loads configuration from an optional TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables (SELLER_ prefix, or the legacy names in Options)
// 2. config.toml
// 3. Built-in defaults
//
// Only the section of the given platform is validated for credentials.
// Every failure wraps integration.ErrConfiguration.
func Load(platform integration.PlatformCode) (*Config, error) {
	return LoadWithViper(viper.New(), platform)
}

// LoadWithViper is Load with a caller-supplied viper instance
func LoadWithViper(v *viper.Viper, platform integration.PlatformCode) (*Config, error) {
	if !platform.IsValid() {
		return nil, fmt.Errorf("%w: unknown platform %q", integration.ErrConfiguration, platform)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/seller-apis")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: error reading config file: %v", integration.ErrConfiguration, err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	for _, opt := range Options {
		v.SetDefault(opt.Key, opt.Default)
		if err := v.BindEnv(append([]string{opt.Key}, opt.EnvNames()...)...); err != nil {
			return nil, fmt.Errorf("%w: binding %s: %v", integration.ErrConfiguration, opt.Key, err)
		}
	}

	options := make([]OptionValue, 0, len(Options))
	for _, opt := range Options {
		options = append(options, opt.valueOf(v))
	}

	cfg := &Config{options: options}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Options: options, Err: fmt.Errorf("%w: %v", integration.ErrConfiguration, err)}
	}

	if err := cfg.validate(platform); err != nil {
		return nil, &Error{Options: options, Err: err}
	}

	return cfg, nil
}

// Error is a configuration that was read but could not be used.
// Options holds every recognized key with the value it resolved to.
type Error struct {
	Options []OptionValue
	Err     error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// validate performs validation on the configuration
func (c *Config) validate(platform integration.PlatformCode) error {
	validate := newValidator()

	sections := []any{c.Log, c.HTTP, c.Feed, c.Sync, c.Pricing, c.Metrics, c.Telemetry, c.Report}
	switch platform {
	case integration.PlatformCodeOzon:
		sections = append(sections, c.Ozon)
	case integration.PlatformCodeYandexMarket:
		sections = append(sections, c.Yandex)
	}

	var problems []string
	for _, section := range sections {
		if err := validate.Struct(section); err != nil {
			problems = append(problems, describeValidationError(section, err)...)
		}
	}

	if platform == integration.PlatformCodeYandexMarket && len(c.Yandex.Campaigns()) == 0 {
		problems = append(problems, "yandex.fbs.campaign_id or yandex.dbs.campaign_id is required")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", integration.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// sectionKeys maps each validated section type to its configuration key
var sectionKeys = map[reflect.Type]string{
	reflect.TypeOf(LogConfig{}):       "log",
	reflect.TypeOf(HTTPConfig{}):      "http",
	reflect.TypeOf(FeedConfig{}):      "feed",
	reflect.TypeOf(SyncConfig{}):      "sync",
	reflect.TypeOf(PricingConfig{}):   "pricing",
	reflect.TypeOf(OzonConfig{}):      "ozon",
	reflect.TypeOf(YandexConfig{}):    "yandex",
	reflect.TypeOf(MetricsConfig{}):   "metrics",
	reflect.TypeOf(TelemetryConfig{}): "telemetry",
	reflect.TypeOf(ReportConfig{}):    "report",
}

// describeValidationError turns validator output into "section.key: rule" messages
func describeValidationError(section any, err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	prefix := sectionKeys[reflect.TypeOf(section)]
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Namespace is "<StructName>.<key>[.<key>]"; swap the struct name for the section key
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		key := prefix + "." + path
		switch fe.Tag() {
		case "required", "required_with":
			messages = append(messages, fmt.Sprintf("%s is required", key))
		default:
			messages = append(messages, fmt.Sprintf("%s must satisfy %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return messages
}

// RecognizedOptions returns every option with its effective value; secrets are masked
func (c *Config) RecognizedOptions() []OptionValue {
	out := make([]OptionValue, len(c.options))
	copy(out, c.options)
	return out
}
