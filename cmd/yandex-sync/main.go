// Command yandex-sync publishes the distributor's stock and prices to the
// configured Yandex Market campaigns (FBS and/or DBS).
//
// Configuration comes from environment variables (SELLER_ prefix, or the legacy
// MARKET_TOKEN, FBS_ID, WAREHOUSE_FBS_ID, DBS_ID and WAREHOUSE_DBS_ID) and an
// optional config.toml.
package main

import (
	"os"

	"github.com/grigory-zhovtun/seller-apis/internal/bootstrap"
	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

func main() {
	os.Exit(bootstrap.Run(integration.PlatformCodeYandexMarket))
}
