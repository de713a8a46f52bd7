// Package pipeline wires the valuation stages end to end: calibrate a
// Base assumption set from history, apply run-config choices and analyst
// overrides, label confidence, run the three scenarios, sweep the
// sensitivity grid and persist the result. The stages themselves stay
// pure; everything effectful (logging, storage, run identity) lives here.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dcfanalyst/pkg/config"
	"dcfanalyst/pkg/core/calibrate"
	"dcfanalyst/pkg/core/confidence"
	"dcfanalyst/pkg/core/scenario"
	"dcfanalyst/pkg/core/sensitivity"
	"dcfanalyst/pkg/core/store"
	"dcfanalyst/pkg/core/validate"
	"dcfanalyst/pkg/models"
)

// Orchestrator manages one ticker's end-to-end valuation run.
type Orchestrator struct {
	repo store.RunRepository
	log  *zap.SugaredLogger
}

// New creates an orchestrator backed by the given repository.
func New(repo store.RunRepository, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{repo: repo, log: log}
}

// Run executes the full pipeline for one snapshot. Identical inputs
// reuse the stored run instead of recomputing: the engine is
// deterministic, so a matching input hash means a matching result.
func (o *Orchestrator) Run(ctx context.Context, snap models.FinancialSnapshot, hist calibrate.History, cfg config.RunConfig, overrides config.Overrides) (*store.RunRecord, error) {
	start := time.Now()
	o.log.Infow("starting valuation run", "ticker", snap.Ticker, "fiscal_year", snap.FiscalYear)

	base, err := o.assembleBase(snap, hist, cfg, overrides)
	if err != nil {
		return nil, err
	}

	if err := validate.ValuationInputs(snap, base); err != nil {
		return nil, fmt.Errorf("input validation for %s: %w", snap.Ticker, err)
	}

	hash, err := store.InputHash(snap, base)
	if err != nil {
		return nil, fmt.Errorf("hashing inputs for %s: %w", snap.Ticker, err)
	}

	if prior, err := o.repo.Latest(ctx, snap.Ticker); err != nil {
		o.log.Warnw("could not check for prior run, recomputing", "ticker", snap.Ticker, "error", err)
	} else if prior != nil && prior.InputHash == hash {
		o.log.Infow("inputs unchanged since last run, reusing stored result",
			"ticker", snap.Ticker, "run_id", prior.RunID)
		return prior, nil
	}

	set, err := scenario.Run(snap, base, cfg.Deltas())
	if err != nil {
		return nil, fmt.Errorf("scenario run for %s: %w", snap.Ticker, err)
	}
	o.log.Infow("scenarios complete",
		"ticker", snap.Ticker,
		"base_per_share", set.Base.ValuePerShare,
		"bull_per_share", set.Bull.ValuePerShare,
		"bear_per_share", set.Bear.ValuePerShare)

	// The Base case carries the resolved cost of capital, whether it was
	// supplied directly or derived from WACC components.
	resolved := set.Base.Assumptions
	grid, err := sensitivity.Analyze(set.Base, snap,
		sensitivity.AxisAround(resolved.CostOfCapital.Value, cfg.WACCSpan.Step, cfg.WACCSpan.Points),
		sensitivity.AxisAround(resolved.TerminalGrowth.Value, cfg.GrowthSpan.Step, cfg.GrowthSpan.Points))
	if err != nil {
		return nil, fmt.Errorf("sensitivity grid for %s: %w", snap.Ticker, err)
	}

	rec := &store.RunRecord{
		Ticker:      snap.Ticker,
		InputHash:   hash,
		Snapshot:    snap,
		Scenarios:   set,
		Sensitivity: grid,
	}
	if err := o.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting run for %s: %w", snap.Ticker, err)
	}

	o.log.Infow("valuation run complete",
		"ticker", snap.Ticker, "run_id", rec.RunID, "elapsed", time.Since(start))
	return rec, nil
}

// assembleBase layers the Base assumption set: calibrated history values,
// then run-config structural choices, then analyst overrides, then the
// confidence labels.
func (o *Orchestrator) assembleBase(snap models.FinancialSnapshot, hist calibrate.History, cfg config.RunConfig, overrides config.Overrides) (models.Assumptions, error) {
	base, err := calibrate.Defaults(snap, hist)
	if err != nil {
		return models.Assumptions{}, fmt.Errorf("calibrating %s: %w", snap.Ticker, err)
	}

	if vol, ok := calibrate.MarginVolatility(hist.OperatingIncome, hist.Revenue); ok {
		o.log.Infow("historical margin volatility",
			"ticker", snap.Ticker, "stdev", vol,
			"margin_assumption", base.TargetOperatingMargin.Value)
	}

	base.HorizonYears = cfg.HorizonYears
	base.FadeMethod = cfg.FadeMethod
	base.TerminalMethod = cfg.TerminalMethod
	if cfg.TerminalMethod == models.TerminalExitMultiple {
		base.ExitMultiple = models.Annotated{Value: cfg.ExitMultiple, Source: models.ProvenanceOverride}
	}

	base, err = overrides.Apply(base)
	if err != nil {
		return models.Assumptions{}, fmt.Errorf("applying overrides for %s: %w", snap.Ticker, err)
	}
	if len(overrides) > 0 {
		o.log.Infow("analyst overrides applied", "ticker", snap.Ticker, "count", len(overrides))
	}

	base, err = confidence.AnnotateAssumptions(base)
	if err != nil {
		return models.Assumptions{}, fmt.Errorf("labeling assumptions for %s: %w", snap.Ticker, err)
	}
	return base, nil
}
