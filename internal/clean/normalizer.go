// Package clean implements the record normalisation and analysis stages of
// the pipeline: deduplication, missing-value imputation, quote sentiment
// analysis and the completeness score.
package clean

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockpipe/data-clean-service/internal/models"
	"github.com/stockpipe/data-clean-service/internal/series"
)

// Deduplicate removes exact-duplicate rows, keeping the first occurrence.
// A remove_duplicates step is logged only when rows were removed.
func Deduplicate(ds *models.Dataset, stats *models.ProcessingStats) {
	before := ds.Rows()

	seen := make(map[string]bool, before)
	switch ds.Kind {
	case models.KindQuotes:
		kept := ds.Quotes[:0]
		for _, q := range ds.Quotes {
			key := quoteKey(&q)
			if !seen[key] {
				seen[key] = true
				kept = append(kept, q)
			}
		}
		ds.Quotes = kept
	case models.KindHistorical:
		kept := ds.Bars[:0]
		for _, b := range ds.Bars {
			key := barKey(&b)
			if !seen[key] {
				seen[key] = true
				kept = append(kept, b)
			}
		}
		ds.Bars = kept
	}

	if removed := before - ds.Rows(); removed > 0 {
		stats.Steps = append(stats.Steps, models.ProcessingStep{
			Step:        models.StepRemoveDuplicates,
			RowsRemoved: removed,
		})
	}
}

// ImputeMissing fills null numeric cells per the column-type policy:
// price-like columns are forward-filled then back-filled, every other numeric
// column takes the column median. Runs only when at least one numeric cell is
// null, and logs a handle_missing_values step with before/after counts.
// An entirely null column stays null.
func ImputeMissing(ds *models.Dataset, stats *models.ProcessingStats) {
	missingBefore := countMissingNumeric(ds)
	if missingBefore == 0 {
		return
	}

	switch ds.Kind {
	case models.KindQuotes:
		// Price columns: ffill then bfill
		for _, col := range []func(*models.QuoteRecord) **decimal.Decimal{
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.CurrentPrice },
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.HighPrice },
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.LowPrice },
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.OpenPrice },
		} {
			fillPricesDecimal(ds.Quotes, col)
		}
		// Remaining numeric columns: median
		for _, col := range []func(*models.QuoteRecord) **decimal.Decimal{
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.PreviousClose },
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.Change },
			func(q *models.QuoteRecord) **decimal.Decimal { return &q.ChangePercent },
		} {
			fillMedianDecimal(ds.Quotes, col)
		}
	case models.KindHistorical:
		for _, col := range []func(*models.HistoricalRecord) **float64{
			func(b *models.HistoricalRecord) **float64 { return &b.Open },
			func(b *models.HistoricalRecord) **float64 { return &b.High },
			func(b *models.HistoricalRecord) **float64 { return &b.Low },
			func(b *models.HistoricalRecord) **float64 { return &b.Close },
		} {
			values := barColumn(ds.Bars, col)
			setBarColumn(ds.Bars, col, series.BackFill(series.ForwardFill(values)))
		}
		volume := func(b *models.HistoricalRecord) **float64 { return &b.Volume }
		setBarColumn(ds.Bars, volume, series.FillMedian(barColumn(ds.Bars, volume)))
	}

	missingAfter := countMissingNumeric(ds)
	stats.Steps = append(stats.Steps, models.ProcessingStep{
		Step:          models.StepHandleMissingValues,
		MissingBefore: &missingBefore,
		MissingAfter:  &missingAfter,
	})
}

func countMissingNumeric(ds *models.Dataset) int {
	n := 0
	if ds.Kind == models.KindQuotes {
		for i := range ds.Quotes {
			q := &ds.Quotes[i]
			for _, p := range []*decimal.Decimal{
				q.CurrentPrice, q.HighPrice, q.LowPrice, q.OpenPrice,
				q.PreviousClose, q.Change, q.ChangePercent,
			} {
				if p == nil {
					n++
				}
			}
		}
		return n
	}
	for i := range ds.Bars {
		b := &ds.Bars[i]
		for _, p := range []*float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if p == nil {
				n++
			}
		}
	}
	return n
}

func barColumn(bars []models.HistoricalRecord, col func(*models.HistoricalRecord) **float64) []*float64 {
	out := make([]*float64, len(bars))
	for i := range bars {
		out[i] = *col(&bars[i])
	}
	return out
}

func setBarColumn(bars []models.HistoricalRecord, col func(*models.HistoricalRecord) **float64, values []*float64) {
	for i := range bars {
		*col(&bars[i]) = values[i]
	}
}

func fillPricesDecimal(quotes []models.QuoteRecord, col func(*models.QuoteRecord) **decimal.Decimal) {
	// Forward fill
	var last *decimal.Decimal
	for i := range quotes {
		p := col(&quotes[i])
		if *p != nil {
			last = *p
		} else if last != nil {
			v := *last
			*p = &v
		}
	}
	// Back fill any still-null leading cells
	var next *decimal.Decimal
	for i := len(quotes) - 1; i >= 0; i-- {
		p := col(&quotes[i])
		if *p != nil {
			next = *p
		} else if next != nil {
			v := *next
			*p = &v
		}
	}
}

func fillMedianDecimal(quotes []models.QuoteRecord, col func(*models.QuoteRecord) **decimal.Decimal) {
	var present []decimal.Decimal
	for i := range quotes {
		if p := *col(&quotes[i]); p != nil {
			present = append(present, *p)
		}
	}
	if len(present) == 0 {
		return
	}
	sort.Slice(present, func(i, j int) bool { return present[i].LessThan(present[j]) })

	var med decimal.Decimal
	mid := len(present) / 2
	if len(present)%2 == 1 {
		med = present[mid]
	} else {
		med = present[mid-1].Add(present[mid]).Div(decimal.NewFromInt(2))
	}

	for i := range quotes {
		p := col(&quotes[i])
		if *p == nil {
			v := med
			*p = &v
		}
	}
}

func quoteKey(q *models.QuoteRecord) string {
	return q.Symbol + "\x1f" +
		decimalKey(q.CurrentPrice) + "\x1f" + decimalKey(q.HighPrice) + "\x1f" +
		decimalKey(q.LowPrice) + "\x1f" + decimalKey(q.OpenPrice) + "\x1f" +
		decimalKey(q.PreviousClose) + "\x1f" + decimalKey(q.Change) + "\x1f" +
		decimalKey(q.ChangePercent) + "\x1f" + q.Timestamp
}

func barKey(b *models.HistoricalRecord) string {
	return b.Symbol + "\x1f" + b.Date + "\x1f" +
		floatKey(b.Open) + "\x1f" + floatKey(b.High) + "\x1f" +
		floatKey(b.Low) + "\x1f" + floatKey(b.Close) + "\x1f" + floatKey(b.Volume)
}

func decimalKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	f := *v
	return decimal.NewFromFloat(f).String()
}
