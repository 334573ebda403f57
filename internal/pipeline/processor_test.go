package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpipe/data-clean-service/internal/dataset"
	"github.com/stockpipe/data-clean-service/internal/discovery"
	"github.com/stockpipe/data-clean-service/internal/models"
)

// writeHistoricalInput writes a 25-row AAPL series with monotonically
// increasing closes and one duplicated row.
func writeHistoricalInput(t *testing.T, dir, token string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("symbol,date,open,high,low,close,volume\n")
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&b, "AAPL,2024-01-%02d,%d.5,%d,%d,%d,%d\n", i, i, i+1, i-1, i, 1000+i)
	}
	b.WriteString("AAPL,2024-01-25,25.5,26,24,25,1025\n") // duplicate

	path := filepath.Join(dir, "stock_historical_"+token+".csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writeQuoteInput(t *testing.T, dir, token string) string {
	t.Helper()
	content := strings.Join([]string{
		"symbol,current_price,high_price,low_price,open_price,previous_close,change,change_percent,timestamp",
		"AAPL,102,103,99,100,100,2,2,2024-01-01T10:00:00",
		"MSFT,95,101,94,100,100,-5,-5,2024-01-01T10:00:00",
		"",
	}, "\n")
	path := filepath.Join(dir, "stock_quotes_"+token+".csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOutputPaths(t *testing.T) {
	csvPath, summaryPath := OutputPaths("/data", models.KindQuotes, "20240101_120000")
	assert.Equal(t, "/data/processed_quotes_20240101_120000.csv", csvPath)
	assert.Equal(t, "/data/processing_summary_quotes_20240101_120000.json", summaryPath)

	// Derivation is stable: same input, same names.
	again, _ := OutputPaths("/data", models.KindQuotes, "20240101_120000")
	assert.Equal(t, csvPath, again)
}

func TestProcessFileHistorical(t *testing.T) {
	dir := t.TempDir()
	path := writeHistoricalInput(t, dir, "T1")
	item := models.WorkItem{Path: path, Kind: models.KindHistorical, Token: "T1"}

	stats, err := NewProcessor(dir).ProcessFile(item)
	require.NoError(t, err)

	assert.Equal(t, 26, stats.OriginalRows)
	assert.Equal(t, 25, stats.FinalRows)
	assert.Equal(t, models.KindHistorical, stats.FileType)

	// Dedup then indicators; no imputation step because nothing was null.
	require.Len(t, stats.Steps, 2)
	assert.Equal(t, models.StepRemoveDuplicates, stats.Steps[0].Step)
	assert.Equal(t, 1, stats.Steps[0].RowsRemoved)
	assert.Equal(t, models.StepTechnicalIndicators, stats.Steps[1].Step)
	assert.Contains(t, stats.Steps[1].IndicatorsAdded, "bollinger_bands")

	// 115 warm-up nulls over 25 rows x 20 columns.
	assert.Equal(t, 77.0, stats.DataQualityScore)

	out, err := dataset.ReadFile(filepath.Join(dir, "processed_historical_T1.csv"), models.KindHistorical)
	require.NoError(t, err)
	require.Equal(t, 25, out.Rows())
	assert.True(t, out.IndicatorsComputed())
	assert.Nil(t, out.Bars[18].Indicators.SMA20)
	require.NotNil(t, out.Bars[19].Indicators.SMA20)
	assert.InDelta(t, 10.5, *out.Bars[19].Indicators.SMA20, 1e-9)
	require.NotNil(t, out.Bars[0].Indicators.EMA12)
	require.NotNil(t, out.Bars[0].Indicators.EMA26)

	var persisted models.ProcessingStats
	data, err := os.ReadFile(filepath.Join(dir, "processing_summary_historical_T1.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, stats.DataQualityScore, persisted.DataQualityScore)
	assert.Len(t, persisted.Steps, 2)
}

func TestProcessFileQuotes(t *testing.T) {
	dir := t.TempDir()
	path := writeQuoteInput(t, dir, "T1")
	item := models.WorkItem{Path: path, Kind: models.KindQuotes, Token: "T1"}

	stats, err := NewProcessor(dir).ProcessFile(item)
	require.NoError(t, err)

	require.Len(t, stats.Steps, 1)
	assert.Equal(t, models.StepMarketAnalysis, stats.Steps[0].Step)
	assert.Equal(t, 100.0, stats.DataQualityScore)

	out, err := dataset.ReadFile(filepath.Join(dir, "processed_quotes_T1.csv"), models.KindQuotes)
	require.NoError(t, err)
	require.Equal(t, 2, out.Rows())
	assert.Equal(t, "Bullish", out.Quotes[0].Sentiment)
	assert.Equal(t, "Strong Bearish", out.Quotes[1].Sentiment)
}

func TestProcessFileEmitsNamesDiscoveryRecognizes(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInput(t, dir, "20240101_120000")
	writeQuoteInput(t, dir, "20240101_120000")

	items := discovery.FindUnprocessed(dir)
	require.Len(t, items, 2)
	for _, item := range items {
		_, err := NewProcessor(dir).ProcessFile(item)
		require.NoError(t, err)
	}

	// Re-scan finds nothing: processing is idempotent by name.
	assert.Empty(t, discovery.FindUnprocessed(dir))
}

func TestProcessFileFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock_quotes_bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("symbol,current_price\nAAPL,notanumber\n"), 0o644))

	_, err := NewProcessor(dir).ProcessFile(models.WorkItem{Path: path, Kind: models.KindQuotes, Token: "bad"})
	require.Error(t, err)

	// Nothing is emitted on failure, so the file stays discoverable.
	items := discovery.FindUnprocessed(dir)
	require.Len(t, items, 1)
	assert.Equal(t, "bad", items[0].Token)
}
