package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source kind constants for discovered input files
const (
	KindQuotes     = "quotes"
	KindHistorical = "historical"
)

// QuoteRecord represents one row of a real-time quote snapshot file.
// Price fields are nullable; a nil pointer is a missing cell.
type QuoteRecord struct {
	Symbol        string           `json:"symbol"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	HighPrice     *decimal.Decimal `json:"high_price"`
	LowPrice      *decimal.Decimal `json:"low_price"`
	OpenPrice     *decimal.Decimal `json:"open_price"`
	PreviousClose *decimal.Decimal `json:"previous_close"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
	Timestamp     string           `json:"timestamp"`

	// Derived by the quote analyzer; nil / empty until that stage runs.
	ChangePercentCalc *decimal.Decimal `json:"change_percent_calc,omitempty"`
	Sentiment         string           `json:"sentiment,omitempty"`
}

// HistoricalRecord represents one row of daily OHLCV history.
// OHLCV fields are float64 pointers because they feed indicator math.
type HistoricalRecord struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`

	// Derived by the indicator engine; nil until that stage runs.
	Indicators *IndicatorSet `json:"indicators,omitempty"`
}

// IndicatorSet holds the indicator columns appended to a historical row.
// Leading warm-up cells are nil.
type IndicatorSet struct {
	SMA5          *float64 `json:"sma_5"`
	SMA20         *float64 `json:"sma_20"`
	EMA12         *float64 `json:"ema_12"`
	EMA26         *float64 `json:"ema_26"`
	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`
	RSI           *float64 `json:"rsi"`
	BBMiddle      *float64 `json:"bb_middle"`
	BBUpper       *float64 `json:"bb_upper"`
	BBLower       *float64 `json:"bb_lower"`
	DailyReturn   *float64 `json:"daily_return"`
	Volatility    *float64 `json:"volatility"`
}

// QuoteColumns is the column order of quote input files, as written by the
// upstream ingest service.
var QuoteColumns = []string{
	"symbol", "current_price", "high_price", "low_price", "open_price",
	"previous_close", "change", "change_percent", "timestamp",
}

// AnalysisColumns are appended to quote files by the quote analyzer.
var AnalysisColumns = []string{"change_percent_calc", "sentiment"}

// HistoricalColumns is the column order of historical input files.
var HistoricalColumns = []string{"symbol", "date", "open", "high", "low", "close", "volume"}

// IndicatorColumns are appended to historical files by the indicator engine,
// in dependency order.
var IndicatorColumns = []string{
	"sma_5", "sma_20", "ema_12", "ema_26",
	"macd", "macd_signal", "macd_histogram",
	"rsi", "bb_middle", "bb_upper", "bb_lower",
	"daily_return", "volatility",
}

// Dataset is the ordered row set for one input file. Exactly one of Quotes
// or Bars is populated depending on Kind; pipeline stages mutate it in place.
type Dataset struct {
	Kind   string
	Quotes []QuoteRecord
	Bars   []HistoricalRecord
}

// Rows returns the current row count.
func (d *Dataset) Rows() int {
	if d.Kind == KindQuotes {
		return len(d.Quotes)
	}
	return len(d.Bars)
}

// HasClose reports whether rows expose a close-like price, i.e. the dataset
// participates in the indicator engine.
func (d *Dataset) HasClose() bool { return d.Kind == KindHistorical }

// HasCurrentPrice reports whether rows expose current_price/previous_close,
// i.e. the dataset participates in the quote analyzer.
func (d *Dataset) HasCurrentPrice() bool { return d.Kind == KindQuotes }

// IndicatorsComputed reports whether the indicator engine has run over this
// dataset (any bar carries an indicator set).
func (d *Dataset) IndicatorsComputed() bool {
	return len(d.Bars) > 0 && d.Bars[0].Indicators != nil
}

// AnalysisComputed reports whether the quote analyzer has run.
func (d *Dataset) AnalysisComputed() bool {
	for i := range d.Quotes {
		if d.Quotes[i].ChangePercentCalc != nil {
			return true
		}
	}
	return false
}

// WorkItem is a discovered, not-yet-processed input file.
type WorkItem struct {
	Path  string
	Kind  string
	Token string
}

// ParseDate parses a historical record date for sorting. Rows with unparseable
// dates sort first, preserving their relative order.
func (h *HistoricalRecord) ParseDate() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", h.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
