package selection

import (
	"math"
	"testing"
	"time"

	"StockRank/internal/domain/models"
)

func seriesFromCloses(symbol string, end time.Time, closes []float64, volume float64) models.PriceSeries {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   end.AddDate(0, 0, i-len(closes)+1),
			Symbol: symbol,
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volume,
		}
	}
	return models.PriceSeries(bars)
}

func geometricCloses(start, dailyRate float64, n int) []float64 {
	out := make([]float64, n)
	c := start
	for i := 0; i < n; i++ {
		out[i] = c
		c *= 1 + dailyRate
	}
	return out
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestComputeFactorsEmptySeries(t *testing.T) {
	if _, err := ComputeFactors(nil); err == nil {
		t.Fatalf("expected error for empty series")
	}
}

func TestComputeFactorsNonPositiveClose(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("X", end, []float64{100, 100, 0}, 1000)
	if _, err := ComputeFactors(s); err == nil {
		t.Fatalf("expected error for non-positive close")
	}
}

func TestMomentumKnownValues(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	closes[40] = 100 // base for the 20-bar window
	closes[59] = 110
	if got := momentum(closes, 20); !almostEqual(got, 0.10, 1e-12) {
		t.Fatalf("momentum 20 = %v, want 0.10", got)
	}
	if got := momentum(closes[:10], 20); got != 0 {
		t.Fatalf("momentum with short history = %v, want 0", got)
	}
}

func TestRSIScoreRisingSeriesIsNeutralMax(t *testing.T) {
	// monotone gains mean zero average loss, which is treated as a
	// neutral RSI of 50 and therefore the max score
	closes := geometricCloses(100, 0.01, 30)
	if got := rsiScore(closes); !almostEqual(got, 1.0, 1e-12) {
		t.Fatalf("rsi score = %v, want 1.0", got)
	}
}

func TestRSIScoreShortHistory(t *testing.T) {
	closes := geometricCloses(100, 0.01, 10)
	if got := rsiScore(closes); got != 0 {
		t.Fatalf("rsi score with %d closes = %v, want 0", len(closes), got)
	}
}

func TestRSIScoreSymmetry(t *testing.T) {
	// alternating equal up and down moves put RSI exactly at 50
	closes := make([]float64, 30)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 0 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	if got := rsiScore(closes); !almostEqual(got, 1.0, 1e-9) {
		t.Fatalf("rsi score = %v, want 1.0", got)
	}
}

func TestVolumeRatioDefaults(t *testing.T) {
	short := make([]float64, 19)
	for i := range short {
		short[i] = 500
	}
	if got := volumeRatio(short); got != 1 {
		t.Fatalf("volume ratio with short history = %v, want 1", got)
	}

	vols := make([]float64, 20)
	for i := range vols {
		vols[i] = 100
	}
	for i := 15; i < 20; i++ {
		vols[i] = 200
	}
	// long mean 125, short mean 200
	if got := volumeRatio(vols); !almostEqual(got, 1.6, 1e-12) {
		t.Fatalf("volume ratio = %v, want 1.6", got)
	}
}

func TestTrendStrengthShortHistory(t *testing.T) {
	closes := geometricCloses(100, 0.01, 49)
	if got := trendStrength(closes); got != 0 {
		t.Fatalf("trend strength with 49 closes = %v, want 0", got)
	}
}

func TestTrendStrengthSign(t *testing.T) {
	up := geometricCloses(100, 0.005, 60)
	if got := trendStrength(up); got <= 0 {
		t.Fatalf("trend strength of rising series = %v, want > 0", got)
	}
	down := geometricCloses(100, -0.005, 60)
	if got := trendStrength(down); got >= 0 {
		t.Fatalf("trend strength of falling series = %v, want < 0", got)
	}
}

func TestAnnualizedVolatilityConstantSeries(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("X", end, geometricCloses(100, 0, 40), 1000)
	if got := annualizedVolatility(s); got != 0 {
		t.Fatalf("volatility of flat series = %v, want 0", got)
	}
}

func TestComputeFactorsFullVector(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("X", end, geometricCloses(100, 0.004, 100), 1000)
	fv, err := ComputeFactors(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range models.AllFactors() {
		if _, ok := fv[f]; !ok {
			t.Fatalf("factor %s missing from vector", f)
		}
	}
	if fv[models.Momentum20d] <= 0 || fv[models.Momentum60d] <= 0 {
		t.Fatalf("rising series should have positive momentum: %v", fv)
	}
}
