package models

// Factor identifies one of the six technical factors the selector
// scores. A fixed enumeration rather than free-form strings so a typo
// in a weight table fails at compile time, not at scoring time.
type Factor string

const (
	Momentum20d   Factor = "momentum_20d"
	Momentum60d   Factor = "momentum_60d"
	Volatility    Factor = "volatility"
	RSIScore      Factor = "rsi_score"
	VolumeRatio   Factor = "volume_ratio"
	TrendStrength Factor = "trend_strength"
)

// AllFactors returns the factor set in canonical order.
func AllFactors() []Factor {
	return []Factor{
		Momentum20d,
		Momentum60d,
		Volatility,
		RSIScore,
		VolumeRatio,
		TrendStrength,
	}
}

// FactorVector holds the factor values computed for one symbol as of
// one date. Every factor is always present; insufficient history maps
// to the documented neutral default, never to a missing key.
type FactorVector map[Factor]float64

// FactorWeights maps factors to signed weights. Volatility carries a
// negative weight: lower volatility is rewarded.
type FactorWeights map[Factor]float64

// Clone returns an independent copy of the weights.
func (w FactorWeights) Clone() FactorWeights {
	out := make(FactorWeights, len(w))
	for f, v := range w {
		out[f] = v
	}
	return out
}
