// Package snapshot turns one configured item into a priced snapshot record.
package snapshot

import (
	"steam-resale-tracker/internal/models"
	"steam-resale-tracker/internal/services/steam"
)

// QuoteFunc fetches the current lowest sell price for a market hash name.
// Implemented by steam.Client.LowestPrice in production.
type QuoteFunc func(marketHashName string) (float64, error)

// Build resolves the item reference, fetches its market price and derives
// net price and return percentage. The quote error is returned as-is when
// no price is available; the caller skips the item for this run.
func Build(item string, buyPrice float64, appID int, quote QuoteFunc) (*models.SnapshotRecord, error) {
	link := steam.EnsureListingURL(item, appID)
	name := steam.MarketHashName(link, appID)

	price, err := quote(name)
	if err != nil {
		return nil, err
	}

	rec := &models.SnapshotRecord{
		ItemLink:    link,
		ItemName:    name,
		BuyPrice:    buyPrice,
		MarketPrice: price,
	}
	rec.Derive()
	return rec, nil
}
