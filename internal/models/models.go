package models

import "time"

// FeeRate is the marketplace cut deducted from every sale.
const FeeRate = 0.13

// SnapshotRecord is one item's priced row for a single run. Market,
// net and return values are kept at full precision; rounding happens
// only when the record is written to the report.
type SnapshotRecord struct {
	ItemLink    string  // full market listings URL
	ItemName    string  // decoded market hash name, the join key across runs
	BuyPrice    float64 // acquisition cost, fixed for the item's lifetime
	MarketPrice float64 // current lowest sell price
	NetPrice    float64 // MarketPrice after the marketplace fee
	ReturnPct   float64 // net gain relative to BuyPrice, in percent
}

// Derive fills NetPrice and ReturnPct from MarketPrice and BuyPrice.
func (r *SnapshotRecord) Derive() {
	r.NetPrice = r.MarketPrice * (1 - FeeRate)
	r.ReturnPct = (r.NetPrice - r.BuyPrice) / r.BuyPrice * 100
}

// PriceSample mirrors a persisted snapshot record into MySQL
// to build historical series outside the workbook.
type PriceSample struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ItemName    string    `json:"item_name" gorm:"index;not null"`
	BuyPrice    float64   `json:"buy_price"`
	MarketPrice float64   `json:"market_price"`
	NetPrice    float64   `json:"net_price"`
	ReturnPct   float64   `json:"return_pct"`
	CapturedAt  time.Time `json:"captured_at" gorm:"index"`
}
