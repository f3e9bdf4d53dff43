package selection

import (
	"testing"
	"time"

	"StockRank/internal/domain/models"
)

func TestClassifyRegimeShortHistory(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("SPY", end, geometricCloses(100, 0.003, 150), 1000)
	if got := ClassifyRegime(s); got != models.RegimeSideways {
		t.Fatalf("regime with 150 bars = %s, want sideways", got)
	}
}

func TestClassifyRegimeBull(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("SPY", end, geometricCloses(100, 0.003, 250), 1000)
	if got := ClassifyRegime(s); got != models.RegimeBull {
		t.Fatalf("regime of steady uptrend = %s, want bull", got)
	}
}

func TestClassifyRegimeBear(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("SPY", end, geometricCloses(400, -0.003, 250), 1000)
	if got := ClassifyRegime(s); got != models.RegimeBear {
		t.Fatalf("regime of steady downtrend = %s, want bear", got)
	}
}

func TestClassifyRegimeFlatIsSideways(t *testing.T) {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	s := seriesFromCloses("SPY", end, geometricCloses(100, 0, 250), 1000)
	if got := ClassifyRegime(s); got != models.RegimeSideways {
		t.Fatalf("regime of flat tape = %s, want sideways", got)
	}
}

func TestRegimeTrackerHysteresis(t *testing.T) {
	tr := NewRegimeTracker(3)

	// warming up: adopt presets directly
	if got := tr.Observe(models.RegimeBull); got != ShiftDirect {
		t.Fatalf("observe 1 = %v, want direct", got)
	}
	if got := tr.Observe(models.RegimeBull); got != ShiftDirect {
		t.Fatalf("observe 2 = %v, want direct", got)
	}

	// unanimous window: smooth toward the preset
	if got := tr.Observe(models.RegimeBull); got != ShiftSmooth {
		t.Fatalf("observe 3 = %v, want smooth", got)
	}

	// a flip does not move weights until the window agrees again
	if got := tr.Observe(models.RegimeBear); got != ShiftHold {
		t.Fatalf("observe 4 = %v, want hold", got)
	}
	if got := tr.Observe(models.RegimeBear); got != ShiftHold {
		t.Fatalf("observe 5 = %v, want hold", got)
	}
	if got := tr.Observe(models.RegimeBear); got != ShiftSmooth {
		t.Fatalf("observe 6 = %v, want smooth", got)
	}

	if got := tr.Last(); got != models.RegimeBear {
		t.Fatalf("last = %s, want bear", got)
	}
}
