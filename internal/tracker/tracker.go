// Package tracker drives one full snapshot run: price every configured
// item, append the snapshot page, then rebuild the trend charts.
package tracker

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"steam-resale-tracker/internal/config"
	"steam-resale-tracker/internal/database"
	"steam-resale-tracker/internal/models"
	"steam-resale-tracker/internal/services/report"
	"steam-resale-tracker/internal/services/snapshot"
)

type Tracker struct {
	cfg   *config.Config
	quote snapshot.QuoteFunc
	db    *gorm.DB // optional archive, may be nil
	log   zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

func New(cfg *config.Config, quote snapshot.QuoteFunc, db *gorm.DB, log zerolog.Logger) *Tracker {
	return &Tracker{
		cfg:   cfg,
		quote: quote,
		db:    db,
		log:   log,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Run executes one snapshot run. Per-item quote failures are logged and
// skipped; only storage-level failures abort the run.
func (t *Tracker) Run() error {
	store, err := report.Open(t.cfg.OutputFile)
	if err != nil {
		return err
	}
	defer store.Close()

	items := make([]string, 0, len(t.cfg.Items))
	for item := range t.cfg.Items {
		items = append(items, item)
	}
	sort.Strings(items)

	var records []models.SnapshotRecord
	for i, item := range items {
		rec, err := snapshot.Build(item, t.cfg.Items[item], t.cfg.AppID, t.quote)
		if err != nil {
			t.log.Warn().Err(err).Str("item", item).Msg("no price this run, skipping item")
		} else {
			records = append(records, *rec)
			t.log.Info().
				Str("item", rec.ItemName).
				Float64("market_price", rec.MarketPrice).
				Float64("return_pct", rec.ReturnPct).
				Msg("priced item")
		}

		// Courtesy pause between market lookups.
		if i < len(items)-1 {
			t.sleep(t.cfg.RequestDelay())
		}
	}

	capturedAt := t.now()
	page, err := store.AppendSnapshot(records, capturedAt)
	if err != nil {
		return err
	}
	if err := store.ApplyPresentation(page); err != nil {
		return err
	}
	t.log.Info().Str("page", page).Int("records", len(records)).Msg("snapshot saved")

	if t.db != nil {
		if err := database.ArchiveRecords(t.db, records, capturedAt); err != nil {
			t.log.Warn().Err(err).Msg("could not archive snapshot to database")
		}
	}

	matrix, buyPrices, err := report.Aggregate(store.File(), t.log)
	if err != nil {
		if errors.Is(err, report.ErrNoHistoricalData) {
			t.log.Warn().Msg("no historical data, skipping charts")
			return store.Save()
		}
		return err
	}

	if err := report.RenderCharts(store.File(), matrix, buyPrices, t.log); err != nil {
		return err
	}
	return store.Save()
}
