// Package indicator computes the dependent chain of technical indicators
// over a time-ordered close-price series.
package indicator

import (
	"sort"

	"github.com/stockpipe/data-clean-service/internal/models"
	"github.com/stockpipe/data-clean-service/internal/series"
)

// MinObservations is the series length a dataset must exceed before the
// indicator chain applies.
const MinObservations = 20

// Families are the indicator family names reported in the processing step
// when the engine runs.
var Families = []string{
	"sma_5", "sma_20", "ema_12", "ema_26", "macd", "rsi", "bollinger_bands", "volatility",
}

// Compute appends the indicator columns to a historical dataset and reports
// whether it applied. The series is sorted date-ascending exactly once, before
// anything is derived; EMA and MACD are recursive and order-dependent.
func Compute(ds *models.Dataset) bool {
	if !ds.HasClose() || ds.Rows() <= MinObservations {
		return false
	}

	sortByDate(ds.Bars)

	closes := make([]*float64, len(ds.Bars))
	for i := range ds.Bars {
		closes[i] = ds.Bars[i].Close
	}

	sma5 := series.RollingMean(closes, 5)
	sma20 := series.RollingMean(closes, 20)

	ema12 := series.EWM(closes, 12)
	ema26 := series.EWM(closes, 26)

	macd := series.Sub(ema12, ema26)
	macdSignal := series.EWM(macd, 9)
	macdHistogram := series.Sub(macd, macdSignal)

	rsi := relativeStrength(closes, 14)

	bbStd := series.RollingStd(closes, 20)
	bbUpper := make([]*float64, len(closes))
	bbLower := make([]*float64, len(closes))
	for i := range closes {
		if sma20[i] != nil && bbStd[i] != nil {
			bbUpper[i] = series.F(*sma20[i] + 2*(*bbStd[i]))
			bbLower[i] = series.F(*sma20[i] - 2*(*bbStd[i]))
		}
	}

	dailyReturn := series.PctChange(closes)
	volatility := series.RollingStd(dailyReturn, 20)

	for i := range ds.Bars {
		ds.Bars[i].Indicators = &models.IndicatorSet{
			SMA5:          sma5[i],
			SMA20:         sma20[i],
			EMA12:         ema12[i],
			EMA26:         ema26[i],
			MACD:          macd[i],
			MACDSignal:    macdSignal[i],
			MACDHistogram: macdHistogram[i],
			RSI:           rsi[i],
			BBMiddle:      sma20[i],
			BBUpper:       bbUpper[i],
			BBLower:       bbLower[i],
			DailyReturn:   dailyReturn[i],
			Volatility:    volatility[i],
		}
	}
	return true
}

// relativeStrength computes RSI over a trailing window. Day-over-day deltas
// split into gains (delta > 0) and losses (delta < 0); a zero delta counts as
// 0 in both rolling means. When the average loss is zero RSI saturates at 100.
func relativeStrength(closes []*float64, window int) []*float64 {
	deltas := series.Diff(closes)

	gains := make([]*float64, len(deltas))
	losses := make([]*float64, len(deltas))
	for i, d := range deltas {
		if d == nil {
			continue
		}
		gain, loss := 0.0, 0.0
		if *d > 0 {
			gain = *d
		} else if *d < 0 {
			loss = -*d
		}
		gains[i] = series.F(gain)
		losses[i] = series.F(loss)
	}

	avgGain := series.RollingMean(gains, window)
	avgLoss := series.RollingMean(losses, window)

	out := make([]*float64, len(closes))
	for i := range closes {
		if avgGain[i] == nil || avgLoss[i] == nil {
			continue
		}
		if *avgLoss[i] == 0 {
			out[i] = series.F(100)
			continue
		}
		rs := *avgGain[i] / *avgLoss[i]
		out[i] = series.F(100 - 100/(1+rs))
	}
	return out
}

// sortByDate orders bars date-ascending. Unparseable dates keep their
// relative order ahead of parseable ones.
func sortByDate(bars []models.HistoricalRecord) {
	sort.SliceStable(bars, func(i, j int) bool {
		ti, iok := bars[i].ParseDate()
		tj, jok := bars[j].ParseDate()
		if !iok || !jok {
			return !iok && jok
		}
		return ti.Before(tj)
	})
}
