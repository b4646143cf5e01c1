// Package integration contains the marketplace synchronization bounded context.
// It reconciles the distributor's stock and price feed with a marketplace catalog.
//
// Key concepts:
//   - SourceRecord: one distributor feed row (SKU, stock, base price)
//   - CatalogEntry: one product listed by the seller on the marketplace
//   - MatchedRecord: a feed row joined with its catalog entry on SKU
//   - UpdatePayload: the stock and price to publish for a matched product
//   - Marketplace: port implemented per platform (Ozon, Yandex Market)
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
