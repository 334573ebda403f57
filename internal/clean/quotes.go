package clean

import (
	"github.com/shopspring/decimal"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// Sentiment label constants
const (
	SentimentStrongBullish = "Strong Bullish"
	SentimentBullish       = "Bullish"
	SentimentBearish       = "Bearish"
	SentimentStrongBearish = "Strong Bearish"
)

var (
	two     = decimal.NewFromInt(2)
	negTwo  = decimal.NewFromInt(-2)
	hundred = decimal.NewFromInt(100)
)

// AnalyzeQuotes computes change_percent_calc and a sentiment label for every
// row exposing both current_price and previous_close. Rows missing either
// value (or with a zero previous close) are left null. Applies only to quote
// datasets; logs a market_analysis step when it runs.
func AnalyzeQuotes(ds *models.Dataset, stats *models.ProcessingStats) {
	if !ds.HasCurrentPrice() {
		return
	}

	for i := range ds.Quotes {
		q := &ds.Quotes[i]
		if q.CurrentPrice == nil || q.PreviousClose == nil || q.PreviousClose.IsZero() {
			continue
		}
		changePct := q.CurrentPrice.Sub(*q.PreviousClose).Div(*q.PreviousClose).Mul(hundred)
		q.ChangePercentCalc = &changePct
		q.Sentiment = Sentiment(changePct)
	}

	stats.Steps = append(stats.Steps, models.ProcessingStep{
		Step:          models.StepMarketAnalysis,
		AnalysisAdded: append([]string{}, models.AnalysisColumns...),
	})
}

// Sentiment classifies a calculated percentage change. The buckets are kept
// exactly as the upstream policy defines them: a change of exactly 0
// classifies as Bearish and exactly 2 as Bullish.
func Sentiment(changePct decimal.Decimal) string {
	switch {
	case changePct.GreaterThan(two):
		return SentimentStrongBullish
	case changePct.GreaterThan(decimal.Zero):
		return SentimentBullish
	case changePct.GreaterThan(negTwo):
		return SentimentBearish
	default:
		return SentimentStrongBearish
	}
}
