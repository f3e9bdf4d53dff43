package selection

import (
	"fmt"
	"math"

	"StockRank/internal/domain/models"
)

// Factor computation windows. A factor with fewer bars than its
// minimum falls back to a neutral default instead of being dropped, so
// weight application always sees the full factor set.
const (
	momentumShortWindow = 20
	momentumLongWindow  = 60
	volatilityWindow    = 20
	rsiPeriod           = 14
	volumeShortWindow   = 5
	volumeLongWindow    = 20
	trendWindow         = 50

	tradingDaysPerYear = 252
)

// ComputeFactors derives the six technical factors from a price
// series ending at the decision date. Pure function of the input; the
// series must already be truncated so its last bar is the as-of bar.
func ComputeFactors(series models.PriceSeries) (models.FactorVector, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("compute factors: empty series")
	}
	last, _ := series.Last()
	if last.Close <= 0 {
		return nil, fmt.Errorf("compute factors: non-positive close %f at %s", last.Close, last.Date.Format("2006-01-02"))
	}

	closes := series.Closes()
	volumes := series.Volumes()

	fv := models.FactorVector{
		models.Momentum20d:   momentum(closes, momentumShortWindow),
		models.Momentum60d:   momentum(closes, momentumLongWindow),
		models.Volatility:    annualizedVolatility(series),
		models.RSIScore:      rsiScore(closes),
		models.VolumeRatio:   volumeRatio(volumes),
		models.TrendStrength: trendStrength(closes),
	}
	return fv, nil
}

// momentum is close[t]/close[t-(w-1)] - 1 over the trailing w bars,
// 0 when history is shorter than w.
func momentum(closes []float64, w int) float64 {
	n := len(closes)
	if n < w {
		return 0
	}
	base := closes[n-w]
	if base <= 0 {
		return 0
	}
	return closes[n-1]/base - 1
}

// annualizedVolatility is the sample stdev of the last 20 daily
// returns scaled by sqrt(252).
func annualizedVolatility(series models.PriceSeries) float64 {
	if series.Len() < volatilityWindow {
		return 0
	}
	rets := series.Returns()
	if len(rets) < 2 {
		return 0
	}
	return sampleStd(lastN(rets, volatilityWindow)) * math.Sqrt(tradingDaysPerYear)
}

// rsi computes RSI(14) from a simple rolling mean of gains and losses
// over the trailing period. A zero loss mean makes RSI undefined; it
// is treated as neutral (50).
func rsi(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}
	var gainSum, lossSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gainSum += d
		} else {
			lossSum += -d
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	if avgLoss == 0 {
		return 50, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// rsiScore peaks at 1.0 for a neutral RSI of 50 and decays linearly
// toward 0 at the extremes.
func rsiScore(closes []float64) float64 {
	r, ok := rsi(closes, rsiPeriod)
	if !ok {
		return 0
	}
	return 1 - math.Abs(r-50)/50
}

// volumeRatio compares recent 5-day average volume to the 20-day
// average. Neutral default is 1 (no unusual activity).
func volumeRatio(volumes []float64) float64 {
	if len(volumes) < volumeLongWindow {
		return 1
	}
	long := mean(lastN(volumes, volumeLongWindow))
	if long <= 0 {
		return 1
	}
	return mean(lastN(volumes, volumeShortWindow)) / long
}

// trendStrength blends the price's position above MA20 and MA50 with
// the MA20/MA50 spread.
func trendStrength(closes []float64) float64 {
	if len(closes) < trendWindow {
		return 0
	}
	ma20 := mean(lastN(closes, 20))
	ma50 := mean(lastN(closes, 50))
	cur := closes[len(closes)-1]

	var aboveMA20, aboveMA50, maTrend float64
	if ma20 > 0 {
		aboveMA20 = (cur - ma20) / ma20
	}
	if ma50 > 0 {
		aboveMA50 = (cur - ma50) / ma50
		maTrend = (ma20 - ma50) / ma50
	}
	return 0.4*aboveMA20 + 0.3*aboveMA50 + 0.3*maTrend
}
