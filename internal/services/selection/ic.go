package selection

import (
	"context"
	"time"

	"StockRank/internal/domain/models"
	applogger "StockRank/pkg/logger"
)

// ICConfig controls rolling information-coefficient estimation.
type ICConfig struct {
	// ReferencePoints is how many historical cross-sections to sample.
	ReferencePoints int
	// SpacingDays is the calendar gap between reference points.
	SpacingDays int
	// ForwardDays is the forward-return horizon. Reference points are
	// pushed back by this amount so the realized return never reads
	// past the decision date.
	ForwardDays int
	// MinBars a symbol needs at a reference point to contribute.
	MinBars int
	// MinCrossSection is the minimum valid (factor, return) pairs at
	// one reference point for its IC to count.
	MinCrossSection int
	// MinPoints is the minimum surviving per-point ICs to average.
	MinPoints int
	// NoiseFloor discards per-point ICs with |IC| below it.
	NoiseFloor float64
}

func defaultICConfig() ICConfig {
	return ICConfig{
		ReferencePoints: 4,
		SpacingDays:     30,
		ForwardDays:     5,
		MinBars:         60,
		MinCrossSection: 10,
		MinPoints:       2,
		NoiseFloor:      0.001,
	}
}

func (c *ICConfig) applyDefaults() {
	d := defaultICConfig()
	if c.ReferencePoints <= 0 {
		c.ReferencePoints = d.ReferencePoints
	}
	if c.SpacingDays <= 0 {
		c.SpacingDays = d.SpacingDays
	}
	if c.ForwardDays <= 0 {
		c.ForwardDays = d.ForwardDays
	}
	if c.MinBars <= 0 {
		c.MinBars = d.MinBars
	}
	if c.MinCrossSection <= 0 {
		c.MinCrossSection = d.MinCrossSection
	}
	if c.MinPoints <= 0 {
		c.MinPoints = d.MinPoints
	}
	if c.NoiseFloor <= 0 {
		c.NoiseFloor = d.NoiseFloor
	}
}

// icEstimator measures each factor's recent predictive power as the
// cross-sectional Pearson correlation between factor values and
// realized forward returns, averaged over several historical
// reference points.
type icEstimator struct {
	universe []string
	loader   *seriesLoader
	cfg      ICConfig
	log      *applogger.Logger
}

func newICEstimator(universe []string, loader *seriesLoader, cfg ICConfig, log *applogger.Logger) *icEstimator {
	cfg.applyDefaults()
	return &icEstimator{universe: universe, loader: loader, cfg: cfg, log: log}
}

// EstimateICs samples ReferencePoints historical cross-sections, each
// offset far enough behind asOf that the forward return is fully
// realized by asOf (no look-ahead). Per-symbol failures are skipped;
// a factor with too little surviving signal gets IC 0.
func (e *icEstimator) EstimateICs(ctx context.Context, asOf time.Time) (map[models.Factor]float64, error) {
	pointICs := make(map[models.Factor][]float64, len(models.AllFactors()))

	for i := 1; i <= e.cfg.ReferencePoints; i++ {
		refDate := asOf.AddDate(0, 0, -(e.cfg.SpacingDays*i + e.cfg.ForwardDays))
		futureDate := refDate.AddDate(0, 0, e.cfg.ForwardDays)
		if futureDate.After(asOf) {
			continue
		}

		factorVals, forwardRets := e.sampleCrossSection(ctx, refDate, futureDate, asOf)

		for _, f := range models.AllFactors() {
			vals := factorVals[f]
			if len(vals) < e.cfg.MinCrossSection {
				continue
			}
			ic := pearson(vals, forwardRets[f])
			if ic > e.cfg.NoiseFloor || ic < -e.cfg.NoiseFloor {
				pointICs[f] = append(pointICs[f], ic)
			}
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	ics := make(map[models.Factor]float64, len(models.AllFactors()))
	for _, f := range models.AllFactors() {
		if samples := pointICs[f]; len(samples) >= e.cfg.MinPoints {
			ics[f] = mean(samples)
		} else {
			ics[f] = 0
		}
	}
	return ics, nil
}

// sampleCrossSection collects (factor value, forward return) pairs
// across the universe at one reference point. The series load is
// hoisted outside the per-factor loop: one load per symbol serves all
// six factors.
func (e *icEstimator) sampleCrossSection(ctx context.Context, refDate, futureDate, asOf time.Time) (map[models.Factor][]float64, map[models.Factor][]float64) {
	factorVals := make(map[models.Factor][]float64, len(models.AllFactors()))
	forwardRets := make(map[models.Factor][]float64, len(models.AllFactors()))

	for _, symbol := range e.universe {
		series, err := e.loader.Load(ctx, symbol, futureDate)
		if err != nil {
			e.debugSkip(symbol, refDate, err.Error())
			continue
		}
		if series.Len() < e.cfg.MinBars {
			continue
		}

		refSeries := series.Truncate(refDate)
		if refSeries.Len() < e.cfg.MinBars {
			continue
		}
		refBar, _ := refSeries.Last()
		if refBar.Close <= 0 {
			continue
		}

		futBar, ok := series.Truncate(futureDate).Last()
		if !ok || futBar.Date.After(asOf) || !futBar.Date.After(refBar.Date) {
			// either the store handed back out-of-window data or
			// there is no realized bar after the reference date
			continue
		}

		fv, err := ComputeFactors(refSeries)
		if err != nil {
			e.debugSkip(symbol, refDate, err.Error())
			continue
		}

		forward := futBar.Close/refBar.Close - 1
		for f, v := range fv {
			factorVals[f] = append(factorVals[f], v)
			forwardRets[f] = append(forwardRets[f], forward)
		}
	}
	return factorVals, forwardRets
}

func (e *icEstimator) debugSkip(symbol string, refDate time.Time, reason string) {
	if e.log == nil {
		return
	}
	e.log.Debug("ic sample skipped",
		applogger.String("symbol", symbol),
		applogger.String("ref_date", refDate.Format(dateLayout)),
		applogger.String("reason", reason),
	)
}
