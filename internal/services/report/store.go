// Package report owns the Excel workbook: snapshot pages, the aggregated
// history pivot and the per-item trend charts.
package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"steam-resale-tracker/internal/models"
)

var (
	// ErrStorageUnavailable means the directory that should hold the
	// workbook does not exist. It is never auto-created.
	ErrStorageUnavailable = errors.New("report folder does not exist")
)

const (
	sheetCharts    = "Charts"
	sheetChartData = "ChartData"
	sheetInit      = "Init"

	pageNameLayout = "2006-01-02_15-04"
)

// Column headers of every snapshot page. Consumers locate columns by
// these names, never by position.
const (
	colItemLink  = "Item_Link"
	colItemName  = "Item_Name"
	colBuyPrice  = "Buy_Price"
	colSellPrice = "Current_Sell_Price"
	colNetPrice  = "Net_Sell_Price"
	colReturn    = "% Return"
)

var snapshotHeader = []string{colItemLink, colItemName, colBuyPrice, colSellPrice, colNetPrice, colReturn}

// Store wraps one open workbook. Snapshot pages are append-only; only the
// two reserved chart sheets are ever rebuilt.
type Store struct {
	f      *excelize.File
	path   string
	styles *pageStyles
}

// pageStyles caches the presentation style IDs so reapplying the
// formatting pass reuses the exact same styles.
type pageStyles struct {
	header int
	body   int
	gain   int
	loss   int
}

// Open loads the workbook at path, creating it when missing. A missing
// parent directory is an operator error and fails with ErrStorageUnavailable.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, dir)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", sheetInit); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetInit, "A1", "This is an auto-generated file."); err != nil {
			return nil, err
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		return &Store{f: f, path: path}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Store{f: f, path: path}, nil
}

// File exposes the underlying workbook for aggregation and chart rendering.
func (s *Store) File() *excelize.File { return s.f }

// Path returns the workbook location on disk.
func (s *Store) Path() string { return s.path }

// Save writes the whole workbook to disk.
func (s *Store) Save() error { return s.f.Save() }

func (s *Store) Close() error { return s.f.Close() }

// AppendSnapshot adds a new page named by the capture time at minute
// resolution. An existing page with that name is never overwritten; the
// new page gets a numeric suffix instead. The page (header plus one row
// per record, numeric values rounded to two decimals) is built fully in
// memory and the workbook saved whole afterwards.
func (s *Store) AppendSnapshot(records []models.SnapshotRecord, at time.Time) (string, error) {
	page := s.freePageName(at)
	if _, err := s.f.NewSheet(page); err != nil {
		return "", fmt.Errorf("append snapshot page: %w", err)
	}

	header := make([]interface{}, len(snapshotHeader))
	for i, h := range snapshotHeader {
		header[i] = h
	}
	if err := s.f.SetSheetRow(page, "A1", &header); err != nil {
		return "", err
	}

	for i, rec := range records {
		row := []interface{}{
			rec.ItemLink,
			rec.ItemName,
			rec.BuyPrice,
			round2(rec.MarketPrice),
			round2(rec.NetPrice),
			round2(rec.ReturnPct),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := s.f.SetSheetRow(page, cell, &row); err != nil {
			return "", err
		}
	}

	if err := s.f.Save(); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return page, nil
}

// ApplyPresentation formats one page: centered cells, bold header,
// content-sized columns and a green/red fill on the "% Return" column.
// Running it twice leaves the page unchanged.
func (s *Store) ApplyPresentation(page string) error {
	rows, err := s.f.GetRows(page)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	styles, err := s.ensureStyles()
	if err != nil {
		return err
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil
	}

	first, _ := excelize.CoordinatesToCellName(1, 1)
	lastHeader, _ := excelize.CoordinatesToCellName(width, 1)
	if err := s.f.SetCellStyle(page, first, lastHeader, styles.header); err != nil {
		return err
	}
	if len(rows) > 1 {
		bodyFirst, _ := excelize.CoordinatesToCellName(1, 2)
		bodyLast, _ := excelize.CoordinatesToCellName(width, len(rows))
		if err := s.f.SetCellStyle(page, bodyFirst, bodyLast, styles.body); err != nil {
			return err
		}
	}

	// Profit/loss fill on the return column; unparsable cells keep the
	// plain body style.
	if returnCol, ok := headerIndex(rows[0], colReturn); ok {
		for r := 2; r <= len(rows); r++ {
			cell, _ := excelize.CoordinatesToCellName(returnCol+1, r)
			raw, err := s.f.GetCellValue(page, cell)
			if err != nil {
				return err
			}
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			style := styles.gain
			if val < 0 {
				style = styles.loss
			}
			if err := s.f.SetCellStyle(page, cell, cell, style); err != nil {
				return err
			}
		}
	}

	for c := 1; c <= width; c++ {
		longest := 0
		for _, row := range rows {
			if c <= len(row) && len(row[c-1]) > longest {
				longest = len(row[c-1])
			}
		}
		colName, _ := excelize.ColumnNumberToName(c)
		if err := s.f.SetColWidth(page, colName, colName, float64(longest+2)); err != nil {
			return err
		}
	}

	return s.f.Save()
}

func (s *Store) ensureStyles() (*pageStyles, error) {
	if s.styles != nil {
		return s.styles, nil
	}

	centered := excelize.Alignment{Horizontal: "center", Vertical: "center"}

	header, err := s.f.NewStyle(&excelize.Style{
		Alignment: &centered,
		Font:      &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}
	body, err := s.f.NewStyle(&excelize.Style{Alignment: &centered})
	if err != nil {
		return nil, err
	}
	gain, err := s.f.NewStyle(&excelize.Style{
		Alignment: &centered,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
	})
	if err != nil {
		return nil, err
	}
	loss, err := s.f.NewStyle(&excelize.Style{
		Alignment: &centered,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return nil, err
	}

	s.styles = &pageStyles{header: header, body: body, gain: gain, loss: loss}
	return s.styles, nil
}

// freePageName derives the page name from the capture time, suffixing a
// counter when a page with that name already exists.
func (s *Store) freePageName(at time.Time) string {
	base := at.Format(pageNameLayout)
	name := base
	for n := 2; s.sheetExists(name); n++ {
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	return name
}

func (s *Store) sheetExists(name string) bool {
	idx, err := s.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// headerIndex finds a column by its header label.
func headerIndex(header []string, label string) (int, bool) {
	for i, h := range header {
		if h == label {
			return i, true
		}
	}
	return 0, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
