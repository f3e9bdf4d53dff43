package selection

import (
	"StockRank/internal/domain/models"
)

// regimeMinBars is the index history needed before classification is
// meaningful; shorter series classify as sideways, not as an error.
const regimeMinBars = 200

// ClassifyRegime scores a market index series into bull/bear/sideways
// using moving-average ordering, momentum thresholds, and volatility.
func ClassifyRegime(index models.PriceSeries) models.Regime {
	if index.Len() < regimeMinBars {
		return models.RegimeSideways
	}

	closes := index.Closes()
	cur := closes[len(closes)-1]
	ma20 := mean(lastN(closes, 20))
	ma50 := mean(lastN(closes, 50))
	ma200 := mean(lastN(closes, 200))

	returns20 := momentum(closes, momentumShortWindow)
	returns60 := momentum(closes, momentumLongWindow)
	vol := annualizedVolatility(index)

	var bullScore, bearScore float64

	// trend: full MA stack ordering scores double a partial ordering
	switch {
	case cur > ma20 && ma20 > ma50 && ma50 > ma200:
		bullScore += 2
	case cur < ma20 && ma20 < ma50 && ma50 < ma200:
		bearScore += 2
	case cur > ma20 && ma20 > ma50:
		bullScore += 1
	case cur < ma20 && ma20 < ma50:
		bearScore += 1
	}

	// momentum thresholds: 2% over 20d and 5% over 60d
	if returns20 > 0.02 && returns60 > 0.05 {
		bullScore += 1
	} else if returns20 < -0.02 && returns60 < -0.05 {
		bearScore += 1
	}

	// calm tape leans bull, stressed tape leans bear
	if vol > 0.25 {
		bearScore += 0.5
	} else if vol < 0.15 {
		bullScore += 0.5
	}

	switch {
	case bullScore >= 2:
		return models.RegimeBull
	case bearScore >= 2:
		return models.RegimeBear
	default:
		return models.RegimeSideways
	}
}

// RegimeShift tells the selector how to react to a new classification.
type RegimeShift int

const (
	// ShiftHold keeps current weights: recent classifications disagree.
	ShiftHold RegimeShift = iota
	// ShiftSmooth blends toward the preset: the window is unanimous.
	ShiftSmooth
	// ShiftDirect adopts the preset outright: still warming up.
	ShiftDirect
)

// RegimeTracker smooths regime transitions. Weights only move toward a
// regime preset once the last `window` classifications agree, which
// stops single-day flips from whipsawing the weight state.
type RegimeTracker struct {
	window  int
	history []models.Regime
}

func NewRegimeTracker(window int) *RegimeTracker {
	if window < 1 {
		window = 1
	}
	return &RegimeTracker{window: window}
}

// Observe records a classification and reports the required shift.
func (t *RegimeTracker) Observe(r models.Regime) RegimeShift {
	t.history = append(t.history, r)
	if len(t.history) > t.window {
		t.history = t.history[len(t.history)-t.window:]
	}
	if len(t.history) < t.window {
		return ShiftDirect
	}
	for _, h := range t.history {
		if h != r {
			return ShiftHold
		}
	}
	return ShiftSmooth
}

// Last returns the most recent classification, or sideways when none
// has been observed yet.
func (t *RegimeTracker) Last() models.Regime {
	if len(t.history) == 0 {
		return models.RegimeSideways
	}
	return t.history[len(t.history)-1]
}
