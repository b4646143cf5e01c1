package integration

import "sort"

// MatchResult is the outcome of joining the feed with a platform catalog
type MatchResult struct {
	// Matched holds one record per SKU present in both inputs, in feed order
	Matched []MatchedRecord
	// UnmatchedSKUs lists feed SKUs the catalog does not know, sorted
	UnmatchedSKUs []string
	// Orphans are catalog entries with no feed row, in catalog order
	Orphans []CatalogEntry
}

// MatchCatalog joins feed records with catalog entries on exact, case-sensitive
// SKU equality. The first occurrence of a duplicated SKU wins on either side.
func MatchCatalog(records []SourceRecord, catalog []CatalogEntry) MatchResult {
	index := make(map[string]CatalogEntry, len(catalog))
	for _, entry := range catalog {
		if entry.SKU == "" {
			continue
		}
		if _, exists := index[entry.SKU]; !exists {
			index[entry.SKU] = entry
		}
	}

	result := MatchResult{
		Matched:       make([]MatchedRecord, 0, len(records)),
		UnmatchedSKUs: make([]string, 0),
		Orphans:       make([]CatalogEntry, 0),
	}

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.SKU]; dup {
			continue
		}
		seen[rec.SKU] = struct{}{}

		entry, ok := index[rec.SKU]
		if !ok {
			result.UnmatchedSKUs = append(result.UnmatchedSKUs, rec.SKU)
			continue
		}
		result.Matched = append(result.Matched, MatchedRecord{
			SKU:               rec.SKU,
			PlatformProductID: entry.PlatformProductID,
			StockQuantity:     rec.StockQuantity,
			BasePrice:         rec.BasePrice,
		})
	}
	sort.Strings(result.UnmatchedSKUs)

	orphaned := make(map[string]struct{})
	for _, entry := range catalog {
		if entry.SKU == "" {
			continue
		}
		if _, inFeed := seen[entry.SKU]; inFeed {
			continue
		}
		if _, dup := orphaned[entry.SKU]; dup {
			continue
		}
		orphaned[entry.SKU] = struct{}{}
		result.Orphans = append(result.Orphans, entry)
	}

	return result
}

// StockResets converts orphaned catalog entries into zero-stock resets
func (r MatchResult) StockResets() []StockReset {
	resets := make([]StockReset, 0, len(r.Orphans))
	for _, entry := range r.Orphans {
		resets = append(resets, StockReset{PlatformProductID: entry.PlatformProductID, SKU: entry.SKU})
	}
	return resets
}
