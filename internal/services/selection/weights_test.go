package selection

import (
	"math"
	"testing"

	"StockRank/internal/domain/models"
)

func TestSmoothWeightsBlend(t *testing.T) {
	got := SmoothWeights(DefaultWeights(), BullWeights(), NewWeightShare)
	// 0.7*0.25 + 0.3*0.30
	if !almostEqual(got[models.Momentum20d], 0.265, 1e-12) {
		t.Fatalf("momentum_20d = %v, want 0.265", got[models.Momentum20d])
	}
	// 0.7*(-0.15) + 0.3*(-0.10)
	if !almostEqual(got[models.Volatility], -0.135, 1e-12) {
		t.Fatalf("volatility = %v, want -0.135", got[models.Volatility])
	}
}

func TestSmoothWeightsConvergesWithoutOvershoot(t *testing.T) {
	w := DefaultWeights()
	target := BearWeights()
	prevDist := math.Inf(1)
	for i := 0; i < 50; i++ {
		w = SmoothWeights(w, target, NewWeightShare)
		var dist float64
		for _, f := range models.AllFactors() {
			dist += math.Abs(w[f] - target[f])
		}
		if dist > prevDist {
			t.Fatalf("distance to target grew at step %d: %v > %v", i, dist, prevDist)
		}
		prevDist = dist
	}
	for _, f := range models.AllFactors() {
		if !almostEqual(w[f], target[f], 1e-6) {
			t.Fatalf("factor %s did not converge: %v vs %v", f, w[f], target[f])
		}
	}
}

func TestWeightsFromICs(t *testing.T) {
	ics := map[models.Factor]float64{
		models.Momentum20d:   0.05,
		models.Momentum60d:   0.025,
		models.Volatility:    0.05,
		models.RSIScore:      0,
		models.VolumeRatio:   0,
		models.TrendStrength: 0,
	}
	w, ok := WeightsFromICs(ics)
	if !ok {
		t.Fatalf("expected weights from non-zero ICs")
	}
	if !almostEqual(w[models.Momentum20d], 0.4, 1e-12) {
		t.Fatalf("momentum_20d = %v, want 0.4", w[models.Momentum20d])
	}
	if !almostEqual(w[models.Momentum60d], 0.2, 1e-12) {
		t.Fatalf("momentum_60d = %v, want 0.2", w[models.Momentum60d])
	}
	// volatility sign is forced negative even for a positive IC
	if !almostEqual(w[models.Volatility], -0.4, 1e-12) {
		t.Fatalf("volatility = %v, want -0.4", w[models.Volatility])
	}
}

func TestWeightsFromICsAllZero(t *testing.T) {
	ics := make(map[models.Factor]float64)
	for _, f := range models.AllFactors() {
		ics[f] = 0
	}
	if _, ok := WeightsFromICs(ics); ok {
		t.Fatalf("expected no weights from all-zero ICs")
	}
}

func TestPresetForRegime(t *testing.T) {
	if w := PresetForRegime(models.RegimeBull); w[models.Momentum20d] != 0.30 {
		t.Fatalf("bull preset momentum_20d = %v", w[models.Momentum20d])
	}
	if w := PresetForRegime(models.RegimeBear); w[models.Volatility] != -0.30 {
		t.Fatalf("bear preset volatility = %v", w[models.Volatility])
	}
	if w := PresetForRegime(models.RegimeSideways); w[models.RSIScore] != 0.25 {
		t.Fatalf("sideways preset rsi_score = %v", w[models.RSIScore])
	}
}
