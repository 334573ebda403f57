// Package dataset reads and writes the CSV row sets the pipeline operates on.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// ReadFile loads an input CSV of the given kind into a Dataset. Column order
// follows the file header; a missing header column leaves cells null.
func ReadFile(path, kind string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: %s", path)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	ds := &models.Dataset{Kind: kind}
	for _, row := range rows[1:] {
		switch kind {
		case models.KindQuotes:
			q := models.QuoteRecord{
				Symbol:    cell(row, "symbol"),
				Timestamp: cell(row, "timestamp"),
			}
			for col, dst := range map[string]**decimal.Decimal{
				"current_price":  &q.CurrentPrice,
				"high_price":     &q.HighPrice,
				"low_price":      &q.LowPrice,
				"open_price":     &q.OpenPrice,
				"previous_close": &q.PreviousClose,
				"change":         &q.Change,
				"change_percent": &q.ChangePercent,
			} {
				if *dst, err = parseDecimal(cell(row, col)); err != nil {
					return nil, fmt.Errorf("invalid %s in %s: %w", col, path, err)
				}
			}
			ds.Quotes = append(ds.Quotes, q)
		case models.KindHistorical:
			b := models.HistoricalRecord{
				Symbol: cell(row, "symbol"),
				Date:   cell(row, "date"),
			}
			for col, dst := range map[string]**float64{
				"open":   &b.Open,
				"high":   &b.High,
				"low":    &b.Low,
				"close":  &b.Close,
				"volume": &b.Volume,
			} {
				if *dst, err = parseFloat(cell(row, col)); err != nil {
					return nil, fmt.Errorf("invalid %s in %s: %w", col, path, err)
				}
			}
			ds.Bars = append(ds.Bars, b)
		default:
			return nil, fmt.Errorf("unknown dataset kind: %s", kind)
		}
	}
	return ds, nil
}

// WriteFile writes the dataset, including any appended analysis or indicator
// columns, to path. Null cells are written as empty fields.
func WriteFile(path string, ds *models.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns(ds)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < ds.Rows(); i++ {
		if err := w.Write(rowCells(ds, i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

// Columns returns the output column set in order, including appended columns
// for stages that have run.
func Columns(ds *models.Dataset) []string {
	if ds.Kind == models.KindQuotes {
		cols := append([]string{}, models.QuoteColumns...)
		if ds.AnalysisComputed() {
			cols = append(cols, models.AnalysisColumns...)
		}
		return cols
	}
	cols := append([]string{}, models.HistoricalColumns...)
	if ds.IndicatorsComputed() {
		cols = append(cols, models.IndicatorColumns...)
	}
	return cols
}

// NullCells counts null cells over the dataset's current column set.
func NullCells(ds *models.Dataset) int {
	nulls := 0
	for i := 0; i < ds.Rows(); i++ {
		for _, c := range rowCells(ds, i) {
			if c == "" {
				nulls++
			}
		}
	}
	return nulls
}

// CellCount returns rows x columns over the current column set.
func CellCount(ds *models.Dataset) int {
	return ds.Rows() * len(Columns(ds))
}

func rowCells(ds *models.Dataset, i int) []string {
	if ds.Kind == models.KindQuotes {
		q := &ds.Quotes[i]
		cells := []string{
			q.Symbol,
			decimalCell(q.CurrentPrice), decimalCell(q.HighPrice), decimalCell(q.LowPrice),
			decimalCell(q.OpenPrice), decimalCell(q.PreviousClose),
			decimalCell(q.Change), decimalCell(q.ChangePercent),
			q.Timestamp,
		}
		if ds.AnalysisComputed() {
			cells = append(cells, decimalCell(q.ChangePercentCalc), q.Sentiment)
		}
		return cells
	}

	b := &ds.Bars[i]
	cells := []string{
		b.Symbol, b.Date,
		floatCell(b.Open), floatCell(b.High), floatCell(b.Low),
		floatCell(b.Close), floatCell(b.Volume),
	}
	if ds.IndicatorsComputed() {
		ind := b.Indicators
		if ind == nil {
			ind = &models.IndicatorSet{}
		}
		cells = append(cells,
			floatCell(ind.SMA5), floatCell(ind.SMA20),
			floatCell(ind.EMA12), floatCell(ind.EMA26),
			floatCell(ind.MACD), floatCell(ind.MACDSignal), floatCell(ind.MACDHistogram),
			floatCell(ind.RSI),
			floatCell(ind.BBMiddle), floatCell(ind.BBUpper), floatCell(ind.BBLower),
			floatCell(ind.DailyReturn), floatCell(ind.Volatility),
		)
	}
	return cells
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func decimalCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
