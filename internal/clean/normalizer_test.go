package clean

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpipe/data-clean-service/internal/models"
	"github.com/stockpipe/data-clean-service/internal/series"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func bar(date string, close *float64, volume *float64) models.HistoricalRecord {
	return models.HistoricalRecord{
		Symbol: "AAPL",
		Date:   date,
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: volume,
	}
}

func TestDeduplicate(t *testing.T) {
	t.Run("removes exact duplicates and logs the step", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindHistorical, Bars: []models.HistoricalRecord{
			bar("2024-01-01", series.F(10), series.F(100)),
			bar("2024-01-01", series.F(10), series.F(100)),
			bar("2024-01-02", series.F(11), series.F(100)),
		}}
		stats := &models.ProcessingStats{}

		Deduplicate(ds, stats)

		assert.Equal(t, 2, ds.Rows())
		require.Len(t, stats.Steps, 1)
		assert.Equal(t, models.StepRemoveDuplicates, stats.Steps[0].Step)
		assert.Equal(t, 1, stats.Steps[0].RowsRemoved)
	})

	t.Run("rows differing in one cell are kept", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindHistorical, Bars: []models.HistoricalRecord{
			bar("2024-01-01", series.F(10), series.F(100)),
			bar("2024-01-01", series.F(10), series.F(200)),
		}}
		stats := &models.ProcessingStats{}

		Deduplicate(ds, stats)

		assert.Equal(t, 2, ds.Rows())
		assert.Empty(t, stats.Steps)
	})

	t.Run("deduplicates quote rows", func(t *testing.T) {
		q := models.QuoteRecord{Symbol: "AAPL", CurrentPrice: dec("150.5"), Timestamp: "2024-01-01T00:00:00"}
		ds := &models.Dataset{Kind: models.KindQuotes, Quotes: []models.QuoteRecord{q, q}}
		stats := &models.ProcessingStats{}

		Deduplicate(ds, stats)

		assert.Equal(t, 1, ds.Rows())
	})
}

func TestImputeMissing(t *testing.T) {
	t.Run("no nulls means no step", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindHistorical, Bars: []models.HistoricalRecord{
			bar("2024-01-01", series.F(10), series.F(100)),
		}}
		stats := &models.ProcessingStats{}

		ImputeMissing(ds, stats)

		assert.Empty(t, stats.Steps)
	})

	t.Run("close forward fills then back fills", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindHistorical, Bars: []models.HistoricalRecord{
			bar("2024-01-01", nil, series.F(100)),
			bar("2024-01-02", series.F(5), series.F(100)),
			bar("2024-01-03", nil, series.F(100)),
			bar("2024-01-04", series.F(7), series.F(100)),
		}}
		stats := &models.ProcessingStats{}

		ImputeMissing(ds, stats)

		closes := []float64{*ds.Bars[0].Close, *ds.Bars[1].Close, *ds.Bars[2].Close, *ds.Bars[3].Close}
		assert.Equal(t, []float64{5, 5, 5, 7}, closes)
	})

	t.Run("volume takes the column median", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindHistorical, Bars: []models.HistoricalRecord{
			bar("2024-01-01", series.F(1), series.F(10)),
			bar("2024-01-02", series.F(2), nil),
			bar("2024-01-03", series.F(3), series.F(30)),
		}}
		stats := &models.ProcessingStats{}

		ImputeMissing(ds, stats)

		require.NotNil(t, ds.Bars[1].Volume)
		assert.Equal(t, 20.0, *ds.Bars[1].Volume)

		require.Len(t, stats.Steps, 1)
		step := stats.Steps[0]
		assert.Equal(t, models.StepHandleMissingValues, step.Step)
		require.NotNil(t, step.MissingBefore)
		require.NotNil(t, step.MissingAfter)
		assert.Equal(t, 1, *step.MissingBefore)
		assert.Equal(t, 0, *step.MissingAfter)
	})

	t.Run("entirely null column stays null", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindHistorical, Bars: []models.HistoricalRecord{
			bar("2024-01-01", series.F(1), nil),
			bar("2024-01-02", series.F(2), nil),
		}}
		stats := &models.ProcessingStats{}

		ImputeMissing(ds, stats)

		assert.Nil(t, ds.Bars[0].Volume)
		assert.Nil(t, ds.Bars[1].Volume)

		require.Len(t, stats.Steps, 1)
		assert.Equal(t, 2, *stats.Steps[0].MissingBefore)
		assert.Equal(t, 2, *stats.Steps[0].MissingAfter)
	})

	t.Run("quote price columns fill, other numerics take the median", func(t *testing.T) {
		ds := &models.Dataset{Kind: models.KindQuotes, Quotes: []models.QuoteRecord{
			{Symbol: "AAPL", CurrentPrice: nil, PreviousClose: dec("100")},
			{Symbol: "MSFT", CurrentPrice: dec("200"), PreviousClose: nil},
			{Symbol: "GOOG", CurrentPrice: dec("300"), PreviousClose: dec("280")},
		}}
		stats := &models.ProcessingStats{}

		ImputeMissing(ds, stats)

		// current_price is price-like: back-filled from the next valid value.
		require.NotNil(t, ds.Quotes[0].CurrentPrice)
		assert.True(t, ds.Quotes[0].CurrentPrice.Equal(decimal.NewFromInt(200)))
		// previous_close is not in the price-like set: median of [100, 280].
		require.NotNil(t, ds.Quotes[1].PreviousClose)
		assert.True(t, ds.Quotes[1].PreviousClose.Equal(decimal.NewFromInt(190)))
	})
}
