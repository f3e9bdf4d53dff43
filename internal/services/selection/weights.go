package selection

import (
	"math"

	"StockRank/internal/domain/models"
)

// NewWeightShare is the fraction of a newly derived weight blended
// into the running weights on each update. The same smoothing applies
// to IC-derived weights and regime preset transitions.
const NewWeightShare = 0.3

// DefaultWeights is the sideways-leaning baseline configuration used
// before any dynamic update and as the fallback when estimation fails.
func DefaultWeights() models.FactorWeights {
	return models.FactorWeights{
		models.Momentum20d:   0.25,
		models.Momentum60d:   0.15,
		models.Volatility:    -0.15,
		models.RSIScore:      0.15,
		models.VolumeRatio:   0.10,
		models.TrendStrength: 0.20,
	}
}

// BullWeights favors momentum and participation.
func BullWeights() models.FactorWeights {
	return models.FactorWeights{
		models.Momentum20d:   0.30,
		models.Momentum60d:   0.20,
		models.Volatility:    -0.10,
		models.RSIScore:      0.10,
		models.VolumeRatio:   0.15,
		models.TrendStrength: 0.15,
	}
}

// BearWeights favors risk control and oversold reversion.
func BearWeights() models.FactorWeights {
	return models.FactorWeights{
		models.Momentum20d:   0.10,
		models.Momentum60d:   0.05,
		models.Volatility:    -0.30,
		models.RSIScore:      0.20,
		models.VolumeRatio:   0.15,
		models.TrendStrength: 0.20,
	}
}

// SidewaysWeights favors mean reversion and volume signals.
func SidewaysWeights() models.FactorWeights {
	return models.FactorWeights{
		models.Momentum20d:   0.15,
		models.Momentum60d:   0.10,
		models.Volatility:    -0.20,
		models.RSIScore:      0.25,
		models.VolumeRatio:   0.20,
		models.TrendStrength: 0.10,
	}
}

// PresetForRegime maps a market regime to its weight preset.
func PresetForRegime(r models.Regime) models.FactorWeights {
	switch r {
	case models.RegimeBull:
		return BullWeights()
	case models.RegimeBear:
		return BearWeights()
	default:
		return SidewaysWeights()
	}
}

// SmoothWeights blends previous weights toward a target:
// (1-newShare)*prev + newShare*target per factor. Pure function; the
// caller owns whatever state holds the result.
func SmoothWeights(prev, target models.FactorWeights, newShare float64) models.FactorWeights {
	out := make(models.FactorWeights, len(target))
	for _, f := range models.AllFactors() {
		out[f] = (1-newShare)*prev[f] + newShare*target[f]
	}
	return out
}

// WeightsFromICs converts per-factor information coefficients into
// normalized weights |IC|/sum|IC|. Volatility keeps a forced negative
// sign: lower volatility is rewarded regardless of the IC's own sign.
// Returns false when every IC is zero (no signal).
func WeightsFromICs(ics map[models.Factor]float64) (models.FactorWeights, bool) {
	var absSum float64
	for _, ic := range ics {
		absSum += math.Abs(ic)
	}
	if absSum == 0 {
		return nil, false
	}
	out := make(models.FactorWeights, len(ics))
	for f, ic := range ics {
		w := math.Abs(ic) / absSum
		if f == models.Volatility {
			w = -w
		}
		out[f] = w
	}
	return out, true
}
