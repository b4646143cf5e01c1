package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Option describes one recognized configuration key
type Option struct {
	Key     string
	Default any
	// Aliases are legacy environment variable names accepted besides the SELLER_ one
	Aliases []string
	Secret  bool
}

// EnvName returns the canonical environment variable for the option
func (o Option) EnvName() string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(o.Key, ".", "_"))
}

// EnvNames returns the canonical name followed by the aliases
func (o Option) EnvNames() []string {
	return append([]string{o.EnvName()}, o.Aliases...)
}

func (o Option) valueOf(v *viper.Viper) OptionValue {
	value := fmt.Sprint(v.Get(o.Key))
	if o.Secret && value != "" {
		value = maskedValue
	}
	return OptionValue{Key: o.Key, Env: o.EnvName(), Value: value, Secret: o.Secret}
}

const maskedValue = "******"

// OptionValue is an option with its effective, loggable value
type OptionValue struct {
	Key    string
	Env    string
	Value  string
	Secret bool
}

// Options lists every recognized key. Defaults here are the only defaults.
var Options = []Option{
	{Key: "app.name", Default: "seller-apis"},
	{Key: "app.env", Default: "development"},

	{Key: "log.level", Default: "info"},
	{Key: "log.format", Default: "console"},
	{Key: "log.output", Default: "stdout"},

	{Key: "http.timeout", Default: "30s"},
	{Key: "http.max_retries", Default: 2},
	{Key: "http.retry_delay", Default: "1s"},
	{Key: "http.max_retry_delay", Default: "10s"},
	{Key: "http.rate_limit_qps", Default: 0.0},
	{Key: "http.rate_limit_burst", Default: 1},
	{Key: "http.user_agent", Default: "seller-apis/1.0"},

	{Key: "feed.url", Default: "https://timeworld.ru/upload/files/ostatki.zip", Aliases: []string{"FEED_URL"}},
	{Key: "feed.username", Default: ""},
	{Key: "feed.password", Default: "", Secret: true},
	{Key: "feed.token", Default: "", Secret: true},
	{Key: "feed.format", Default: "auto"},
	{Key: "feed.header_row", Default: 17},
	{Key: "feed.sku_column", Default: "Код"},
	{Key: "feed.stock_column", Default: "Количество"},
	{Key: "feed.price_column", Default: "Цена"},
	{Key: "feed.overflow_marker", Default: ">10"},
	{Key: "feed.overflow_stock", Default: 100},
	{Key: "feed.reserve_threshold", Default: 1},
	{Key: "feed.encoding", Default: "utf-8"},
	{Key: "feed.csv_delimiter", Default: ","},
	{Key: "feed.max_size_mb", Default: 50},

	{Key: "sync.max_stock", Default: 0},
	// The legacy scripts always zeroed catalog offers missing from the feed;
	// here it is opt-in.
	{Key: "sync.zero_missing_stock", Default: false},
	{Key: "sync.dry_run", Default: false},

	{Key: "pricing.markup", Default: "none"},
	{Key: "pricing.markup_value", Default: "0"},
	{Key: "pricing.round_step", Default: "1"},
	{Key: "pricing.round_mode", Default: "half_up"},

	{Key: "ozon.client_id", Default: "", Aliases: []string{"CLIENT_ID"}},
	{Key: "ozon.api_key", Default: "", Aliases: []string{"SELLER_TOKEN"}, Secret: true},
	{Key: "ozon.base_url", Default: "https://api-seller.ozon.ru"},
	{Key: "ozon.stock_batch_size", Default: 100},
	{Key: "ozon.price_batch_size", Default: 1000},
	{Key: "ozon.page_size", Default: 1000},

	{Key: "yandex.token", Default: "", Aliases: []string{"MARKET_TOKEN"}, Secret: true},
	{Key: "yandex.base_url", Default: "https://api.partner.market.yandex.ru"},
	{Key: "yandex.fbs.campaign_id", Default: "", Aliases: []string{"FBS_ID"}},
	{Key: "yandex.fbs.warehouse_id", Default: "", Aliases: []string{"WAREHOUSE_FBS_ID"}},
	{Key: "yandex.dbs.campaign_id", Default: "", Aliases: []string{"DBS_ID"}},
	{Key: "yandex.dbs.warehouse_id", Default: "", Aliases: []string{"WAREHOUSE_DBS_ID"}},
	{Key: "yandex.stock_batch_size", Default: 2000},
	{Key: "yandex.price_batch_size", Default: 500},
	{Key: "yandex.page_size", Default: 200},

	{Key: "metrics.pushgateway_url", Default: ""},
	{Key: "metrics.job_name", Default: "seller_apis_sync"},

	{Key: "telemetry.enabled", Default: false},
	{Key: "telemetry.collector_endpoint", Default: "localhost:4317"},
	{Key: "telemetry.sampling_ratio", Default: 1.0},
	{Key: "telemetry.service_name", Default: "seller-apis"},
	{Key: "telemetry.insecure", Default: true},

	{Key: "report.s3_bucket", Default: ""},
	{Key: "report.s3_prefix", Default: "runs/"},
	{Key: "report.s3_endpoint", Default: ""},
	{Key: "report.s3_region", Default: "us-east-1"},
	{Key: "report.s3_access_key", Default: "", Secret: true},
	{Key: "report.s3_secret_key", Default: "", Secret: true},
	{Key: "report.s3_use_path_style", Default: true},
}
