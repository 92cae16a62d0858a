package pipeline

import (
	"fmt"
	"log"
	"time"

	"flex-valuation/internal/analysis"
	"flex-valuation/internal/config"
	"flex-valuation/internal/data"
	"flex-valuation/internal/observability/metrics"
	"flex-valuation/internal/valuation"
)

// Outcome is everything a run produces before anything is written.
type Outcome struct {
	Dataset *data.Dataset
	Result  *valuation.Result
	Summary analysis.Summary
}

// Options tweak a single run without touching the configuration.
type Options struct {
	// LimitRows truncates the merged table before valuation (0 = all).
	LimitRows int
	// GlobalAverageOverride replaces the computed global average price when set.
	GlobalAverageOverride *float64
}

// Run prepares the dataset and values it. Structural errors abort before valuation.
func Run(cfg *config.Config, opts Options) (out *Outcome, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRun(start, err) }()

	ds, err := data.BuildDataset(cfg, valuation.HorizonHours)
	if err != nil {
		return nil, fmt.Errorf("prepare dataset: %w", err)
	}
	if opts.LimitRows > 0 && opts.LimitRows < len(ds.Records) {
		ds.Records = ds.Records[:opts.LimitRows]
	}
	if opts.GlobalAverageOverride != nil {
		ds.GlobalAverage = *opts.GlobalAverageOverride
	}

	engine := &valuation.Engine{Workers: cfg.Engine.Workers}
	res, err := engine.Run(valuation.Inputs{
		Records:            ds.Records,
		Profiles:           ds.Profiles,
		GlobalAveragePrice: ds.GlobalAverage,
	})
	if err != nil {
		return nil, fmt.Errorf("valuation: %w", err)
	}

	metrics.AddRows(metrics.OutcomeValued, res.Valued)
	metrics.AddRows(metrics.OutcomeSkipped, len(res.Skipped))
	metrics.AddRows(metrics.OutcomePriceGap, len(res.PriceGaps))
	metrics.AddRows(metrics.OutcomeTail, res.Tail)

	log.Printf("[pipeline] Valued %d of %d rows in %v (global average price %.4f)",
		res.Valued, len(res.Rows), time.Since(start).Round(time.Millisecond), ds.GlobalAverage)

	return &Outcome{
		Dataset: ds,
		Result:  res,
		Summary: analysis.Summarize(res.Rows),
	}, nil
}
