// Command ozon-sync publishes the distributor's stock and prices to an Ozon seller account.
//
// Configuration comes from environment variables (SELLER_ prefix, or the legacy
// SELLER_TOKEN and CLIENT_ID) and an optional config.toml.
package main

import (
	"os"

	"github.com/grigory-zhovtun/seller-apis/internal/bootstrap"
	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

func main() {
	os.Exit(bootstrap.Run(integration.PlatformCodeOzon))
}
