package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"steam-resale-tracker/internal/config"
	"steam-resale-tracker/internal/services/steam"
)

// fakeQuotes returns per-run quotes keyed by item name; a missing entry
// means the market had no price that run.
type fakeQuotes struct {
	runs []map[string]float64
	run  int
}

func (q *fakeQuotes) next() {
	q.run++
}

func (q *fakeQuotes) lowestPrice(name string) (float64, error) {
	price, ok := q.runs[q.run][name]
	if !ok {
		return 0, steam.ErrQuoteAbsent
	}
	return price, nil
}

func newTestTracker(t *testing.T, cfg *config.Config, quotes *fakeQuotes) *Tracker {
	t.Helper()
	tr := New(cfg, quotes.lowestPrice, nil, zerolog.New(nil).Level(zerolog.Disabled))
	tr.sleep = func(time.Duration) {}
	return tr
}

func TestTwoRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	cfg := &config.Config{
		AppID:      730,
		Currency:   6,
		OutputFile: path,
		Items:      map[string]float64{"itemA": 50.0, "itemB": 75.0},
	}

	quotes := &fakeQuotes{runs: []map[string]float64{
		{"itemA": 60.0}, // itemB absent on the first run
		{"itemA": 60.0, "itemB": 80.0},
	}}

	tr := newTestTracker(t, cfg, quotes)
	tr.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }
	require.NoError(t, tr.Run())

	quotes.next()
	tr.now = func() time.Time { return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) }
	require.NoError(t, tr.Run())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// First page: exactly one record, itemB was skipped.
	rows, err := f.GetRows("2026-08-28_10-00")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "itemA", rows[1][1])
	assert.Equal(t, "52.2", rows[1][4])
	assert.Equal(t, "4.4", rows[1][5])

	// Second page: both items priced.
	rows, err = f.GetRows("2026-08-29_10-00")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Aggregated matrix: 2 dates x 2 items with one empty cell for itemB.
	data, err := f.GetRows("ChartData")
	require.NoError(t, err)
	require.Len(t, data, 3)
	assert.Equal(t, "itemA", data[0][1])
	assert.Equal(t, "itemB", data[0][2])
	assert.Equal(t, "52.2", data[1][1])
	if len(data[1]) > 2 {
		assert.Equal(t, "", data[1][2])
	}
	assert.Equal(t, "52.2", data[2][1])
	assert.Equal(t, "69.6", data[2][2])

	// Charts first, ChartData second.
	sheets := f.GetSheetList()
	assert.Equal(t, "Charts", sheets[0])
	assert.Equal(t, "ChartData", sheets[1])
}

func TestRunFailsOnMissingFolder(t *testing.T) {
	cfg := &config.Config{
		AppID:      730,
		OutputFile: filepath.Join(t.TempDir(), "missing", "report.xlsx"),
		Items:      map[string]float64{"itemA": 50.0},
	}
	quotes := &fakeQuotes{runs: []map[string]float64{{"itemA": 60.0}}}

	tr := newTestTracker(t, cfg, quotes)
	assert.Error(t, tr.Run())
}

func TestRunAllQuotesAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	cfg := &config.Config{
		AppID:      730,
		OutputFile: path,
		Items:      map[string]float64{"itemA": 50.0},
	}
	quotes := &fakeQuotes{runs: []map[string]float64{{}}}

	tr := newTestTracker(t, cfg, quotes)
	tr.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }
	require.NoError(t, tr.Run())

	// Page exists with a header only; charts were skipped for lack of data.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("2026-08-28_10-00")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	idx, err := f.GetSheetIndex("Charts")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}
