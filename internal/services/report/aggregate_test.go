package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"steam-resale-tracker/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "report.xlsx"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAggregateStaggeredItems(t *testing.T) {
	store := testStore(t)
	log := zerolog.New(nil).Level(zerolog.Disabled)

	_, err := store.AppendSnapshot([]models.SnapshotRecord{
		testRecord("A", 50, 60),
	}, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = store.AppendSnapshot([]models.SnapshotRecord{
		testRecord("A", 50, 62),
		testRecord("B", 75, 80),
	}, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	matrix, buyPrices, err := Aggregate(store.File(), log)
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-08-28_10-00", "2026-08-29_10-00"}, matrix.Dates)
	assert.Equal(t, []string{"A", "B"}, matrix.Items)

	// A is present in both pages.
	v, ok := matrix.Value("2026-08-28_10-00", "A")
	assert.True(t, ok)
	assert.InDelta(t, 52.2, v, 1e-9)
	v, ok = matrix.Value("2026-08-29_10-00", "A")
	assert.True(t, ok)
	assert.InDelta(t, 53.94, v, 1e-9)

	// B's cell for the first page stays empty, never zero-filled.
	_, ok = matrix.Value("2026-08-28_10-00", "B")
	assert.False(t, ok)
	v, ok = matrix.Value("2026-08-29_10-00", "B")
	assert.True(t, ok)
	assert.InDelta(t, 69.6, v, 1e-9)

	// Buy prices come from the earliest page only: B never appeared there.
	assert.Equal(t, map[string]float64{"A": 50}, buyPrices)
}

func TestAggregateAveragesDuplicates(t *testing.T) {
	store := testStore(t)
	log := zerolog.New(nil).Level(zerolog.Disabled)

	_, err := store.AppendSnapshot([]models.SnapshotRecord{
		testRecord("A", 50, 60),
		testRecord("A", 50, 70),
	}, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	matrix, _, err := Aggregate(store.File(), log)
	require.NoError(t, err)

	v, ok := matrix.Value("2026-08-29_10-00", "A")
	assert.True(t, ok)
	assert.InDelta(t, 65*0.87, v, 1e-9)
}

func TestAggregateKeepsFirstBuyPrice(t *testing.T) {
	store := testStore(t)
	log := zerolog.New(nil).Level(zerolog.Disabled)

	_, err := store.AppendSnapshot([]models.SnapshotRecord{
		testRecord("A", 50, 60),
	}, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Later page claims a different buy price; the original wins.
	_, err = store.AppendSnapshot([]models.SnapshotRecord{
		testRecord("A", 55, 60),
	}, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, buyPrices, err := Aggregate(store.File(), log)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 50}, buyPrices)
}

func TestAggregateNoHistoricalData(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	// Workbook holding only the reserved chart sheets.
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Charts"))
	_, err := f.NewSheet("ChartData")
	require.NoError(t, err)
	defer f.Close()

	_, _, err = Aggregate(f, log)
	assert.ErrorIs(t, err, ErrNoHistoricalData)

	// A freshly created workbook (Init placeholder only) has none either.
	store := testStore(t)
	_, _, err = Aggregate(store.File(), log)
	assert.ErrorIs(t, err, ErrNoHistoricalData)
}
