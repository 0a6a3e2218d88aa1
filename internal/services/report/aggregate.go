package report

import (
	"errors"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"steam-resale-tracker/internal/models"
)

// ErrNoHistoricalData means no snapshot page held a usable price row, so
// there is nothing to chart. Recoverable: chart generation becomes a no-op.
var ErrNoHistoricalData = errors.New("no historical data to aggregate")

// Matrix is the dense date x item pivot of net prices driving the charts.
// Rows are page names sorted ascending, columns are item names in order of
// first appearance. Missing cells stay missing, never zero-filled.
type Matrix struct {
	Dates []string
	Items []string
	cells map[string]map[string]float64
}

// Value returns the net price for a (date, item) cell if present.
func (m *Matrix) Value(date, item string) (float64, bool) {
	byItem, ok := m.cells[date]
	if !ok {
		return 0, false
	}
	v, ok := byItem[item]
	return v, ok
}

// Empty reports whether the matrix has nothing to chart.
func (m *Matrix) Empty() bool {
	return m == nil || len(m.Dates) == 0 || len(m.Items) == 0
}

type cellKey struct {
	date string
	item string
}

// Aggregate scans every snapshot page of the workbook, re-derives each
// item's net price from its stored market price and pivots the result into
// a dense matrix. Buy prices are sourced once, from the earliest snapshot
// page; later pages that disagree are reported but not trusted.
func Aggregate(f *excelize.File, log zerolog.Logger) (*Matrix, map[string]float64, error) {
	buyPrices := make(map[string]float64)
	sums := make(map[cellKey]float64)
	counts := make(map[cellKey]int)
	dateSet := make(map[string]bool)

	var dates, items []string
	seenItem := make(map[string]bool)
	buyAuthority := false

	for _, page := range f.GetSheetList() {
		if page == sheetCharts || page == sheetChartData {
			continue
		}
		rows, err := f.GetRows(page)
		if err != nil {
			return nil, nil, err
		}
		if len(rows) < 2 {
			continue
		}

		nameCol, okName := headerIndex(rows[0], colItemName)
		priceCol, okPrice := headerIndex(rows[0], colSellPrice)
		if !okName || !okPrice {
			// Not a snapshot page (e.g. the Init placeholder).
			continue
		}
		buyCol, okBuy := headerIndex(rows[0], colBuyPrice)
		firstPage := !buyAuthority
		buyAuthority = true

		for _, row := range rows[1:] {
			name := cellAt(row, nameCol)
			if name == "" {
				continue
			}

			if okBuy {
				if buy, err := strconv.ParseFloat(cellAt(row, buyCol), 64); err == nil {
					if firstPage {
						buyPrices[name] = buy
					} else if known, ok := buyPrices[name]; ok && known != buy {
						log.Warn().
							Str("item", name).
							Str("page", page).
							Float64("recorded", known).
							Float64("found", buy).
							Msg("buy price differs from first snapshot; keeping the original")
					}
				}
			}

			market, err := strconv.ParseFloat(cellAt(row, priceCol), 64)
			if err != nil {
				continue
			}
			net := market * (1 - models.FeeRate)

			key := cellKey{date: page, item: name}
			sums[key] += net
			counts[key]++
			if !dateSet[page] {
				dateSet[page] = true
				dates = append(dates, page)
			}
			if !seenItem[name] {
				seenItem[name] = true
				items = append(items, name)
			}
		}
	}

	if len(counts) == 0 {
		return nil, nil, ErrNoHistoricalData
	}

	sort.Strings(dates)

	cells := make(map[string]map[string]float64, len(dates))
	for key, sum := range sums {
		byItem := cells[key.date]
		if byItem == nil {
			byItem = make(map[string]float64)
			cells[key.date] = byItem
		}
		byItem[key.item] = sum / float64(counts[key])
	}

	return &Matrix{Dates: dates, Items: items, cells: cells}, buyPrices, nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
