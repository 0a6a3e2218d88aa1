package report

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	chartsPerRow    = 2
	chartPitchCols  = 15 // horizontal grid pitch, in sheet columns
	chartPitchRows  = 29 // vertical grid pitch, in sheet rows
	chartWidthPx    = 900
	chartHeightPx   = 540
	trendLineColor  = "1F4E78"
	buyLineColor    = "FF0000"
	trendLineWidth  = 1.25
	buyLineWidth    = 2.25
	trendMarkerSize = 6
)

// RenderCharts rebuilds the two reserved sheets from the aggregated matrix:
// ChartData holds the pivot verbatim plus one constant buy-price column per
// charted item, Charts holds one line chart per item on a fixed 2-per-row
// grid. Snapshot pages are never touched; afterwards the sheets are
// reordered so Charts comes first and ChartData second.
func RenderCharts(f *excelize.File, m *Matrix, buyPrices map[string]float64, log zerolog.Logger) error {
	for _, name := range []string{sheetCharts, sheetChartData} {
		if err := f.DeleteSheet(name); err != nil {
			return fmt.Errorf("drop sheet %s: %w", name, err)
		}
	}
	if _, err := f.NewSheet(sheetChartData); err != nil {
		return err
	}
	chartIdx, err := f.NewSheet(sheetCharts)
	if err != nil {
		return err
	}

	if m.Empty() {
		log.Warn().Msg("no data for charts")
		return reorderSheets(f)
	}

	header := make([]interface{}, 0, len(m.Items)+1)
	header = append(header, "Date")
	for _, item := range m.Items {
		header = append(header, item)
	}
	if err := f.SetSheetRow(sheetChartData, "A1", &header); err != nil {
		return err
	}

	for i, date := range m.Dates {
		row := make([]interface{}, 0, len(m.Items)+1)
		row = append(row, date)
		for _, item := range m.Items {
			if v, ok := m.Value(date, item); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetChartData, cell, &row); err != nil {
			return err
		}
	}

	lastRow := len(m.Dates) + 1
	auxCol := len(m.Items) + 2 // first free column after the pivot

	for i, item := range m.Items {
		col, _ := excelize.ColumnNumberToName(i + 2)
		series := []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheetChartData, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetChartData, lastRow),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheetChartData, col, col, lastRow),
			Fill:       excelize.Fill{Color: []string{trendLineColor}},
			Line:       excelize.ChartLine{Width: trendLineWidth},
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: trendMarkerSize},
		}}

		// Constant buy-price reference line, when the item's buy price is
		// known from the earliest snapshot.
		if buy, ok := buyPrices[item]; ok {
			refCol, err := writeReferenceColumn(f, auxCol, item, buy, lastRow)
			if err != nil {
				return err
			}
			auxCol++
			series = append(series, excelize.ChartSeries{
				Name:       fmt.Sprintf("'%s'!$%s$1", sheetChartData, refCol),
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetChartData, lastRow),
				Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheetChartData, refCol, refCol, lastRow),
				Fill:       excelize.Fill{Color: []string{buyLineColor}},
				Line:       excelize.ChartLine{Width: buyLineWidth},
				Marker:     excelize.ChartMarker{Symbol: "none"},
			})
		}

		anchor, _ := excelize.CoordinatesToCellName(
			(i%chartsPerRow)*chartPitchCols+1,
			(i/chartsPerRow)*chartPitchRows+1,
		)
		chart := &excelize.Chart{
			Type:      excelize.Line,
			Series:    series,
			Title:     []excelize.RichTextRun{{Text: item}},
			Legend:    excelize.ChartLegend{Position: "none"},
			XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Date"}}},
			YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Net Price (after Steam fee)"}}},
			Dimension: excelize.ChartDimension{Width: chartWidthPx, Height: chartHeightPx},
		}
		if err := f.AddChart(sheetCharts, anchor, chart); err != nil {
			return fmt.Errorf("add chart for %s: %w", item, err)
		}
	}

	f.SetActiveSheet(chartIdx)
	return reorderSheets(f)
}

// writeReferenceColumn materializes a constant buy-price series as an extra
// ChartData column spanning the same date range as the pivot.
func writeReferenceColumn(f *excelize.File, colNum int, item string, buy float64, lastRow int) (string, error) {
	col, err := excelize.ColumnNumberToName(colNum)
	if err != nil {
		return "", err
	}
	if err := f.SetCellValue(sheetChartData, col+"1", item+"_BuyPrice"); err != nil {
		return "", err
	}
	for r := 2; r <= lastRow; r++ {
		cell, _ := excelize.CoordinatesToCellName(colNum, r)
		if err := f.SetCellValue(sheetChartData, cell, buy); err != nil {
			return "", err
		}
	}
	return col, nil
}

// reorderSheets puts Charts first and ChartData second, leaving all
// snapshot pages in their existing relative order.
func reorderSheets(f *excelize.File) error {
	sheets := f.GetSheetList()
	if len(sheets) > 0 && sheets[0] != sheetCharts {
		if err := f.MoveSheet(sheetCharts, sheets[0]); err != nil {
			return err
		}
	}
	sheets = f.GetSheetList()
	if len(sheets) > 1 && sheets[1] != sheetChartData {
		if err := f.MoveSheet(sheetChartData, sheets[1]); err != nil {
			return err
		}
	}
	return nil
}
