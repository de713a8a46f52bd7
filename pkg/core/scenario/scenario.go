// Package scenario derives the Bull and Bear cases from the Base
// assumption set and runs the forecast/discount pipeline once per case.
// Cases are explicit delta transformations over an immutable Base; the
// three computations share no state.
package scenario

import (
	"fmt"

	"dcfanalyst/pkg/core/fade"
	"dcfanalyst/pkg/core/forecast"
	"dcfanalyst/pkg/core/valuation"
	"dcfanalyst/pkg/models"
)

// Deltas are the shifts applied to Base to produce Bull (as written) and
// Bear (mirrored). Defaults follow the house scenario sheet: WACC moves a
// point, terminal growth half a point.
type Deltas struct {
	StartGrowth     float64 `yaml:"start_growth"`
	TerminalGrowth  float64 `yaml:"terminal_growth"`
	OperatingMargin float64 `yaml:"operating_margin"`
	CostOfCapital   float64 `yaml:"cost_of_capital"`
}

// DefaultDeltas returns the standard Bull shifts.
func DefaultDeltas() Deltas {
	return Deltas{
		StartGrowth:     0.02,
		TerminalGrowth:  0.005,
		OperatingMargin: 0.01,
		CostOfCapital:   -0.01,
	}
}

// BullCase shifts Base toward the optimistic corner: faster growth,
// richer margin, cheaper capital. Provenance tags are inherited; the
// shift does not change where a number originally came from.
func BullCase(base models.Assumptions, d Deltas) models.Assumptions {
	bull := base
	bull.Scenario = "bull"
	bull.StartGrowth.Value += d.StartGrowth
	bull.TerminalGrowth.Value += d.TerminalGrowth
	bull.TargetOperatingMargin.Value += d.OperatingMargin
	bull.CostOfCapital.Value += d.CostOfCapital
	return bull
}

// BearCase mirrors the Bull shifts in the opposite direction.
func BearCase(base models.Assumptions, d Deltas) models.Assumptions {
	bear := base
	bear.Scenario = "bear"
	bear.StartGrowth.Value -= d.StartGrowth
	bear.TerminalGrowth.Value -= d.TerminalGrowth
	bear.TargetOperatingMargin.Value -= d.OperatingMargin
	bear.CostOfCapital.Value -= d.CostOfCapital
	return bear
}

// ResolveCostOfCapital returns the scenario's discount rate: the directly
// supplied value when present, otherwise a CAPM derivation from the WACC
// components.
func ResolveCostOfCapital(a models.Assumptions) (models.Annotated, error) {
	if a.CostOfCapital.Value > 0 {
		return a.CostOfCapital, nil
	}
	if a.WACCInputs != nil {
		b := valuation.DeriveWACC(*a.WACCInputs, a.TaxRate.Value)
		return models.Annotated{Value: b.WACC, Source: models.ProvenanceComputed}, nil
	}
	return models.Annotated{}, &models.InvalidAssumptionError{
		Field:  "cost_of_capital",
		Reason: "no cost of capital supplied and no WACC components to derive one",
	}
}

// Run executes Base, Bull and Bear independently and returns the full
// set. Any single failure aborts the whole run: downstream reporting
// expects all three cases, so a partial set is not valid output.
func Run(snap models.FinancialSnapshot, base models.Assumptions, d Deltas) (models.ScenarioSet, error) {
	base.Scenario = "base"
	wacc, err := ResolveCostOfCapital(base)
	if err != nil {
		return models.ScenarioSet{}, err
	}
	base.CostOfCapital = wacc

	cases := []models.Assumptions{base, BullCase(base, d), BearCase(base, d)}
	results := make([]models.ValuationResult, len(cases))

	for i, a := range cases {
		res, err := runOne(snap, a)
		if err != nil {
			return models.ScenarioSet{}, fmt.Errorf("%s scenario: %w", a.Scenario, err)
		}
		results[i] = res
	}

	return models.ScenarioSet{
		Ticker: snap.Ticker,
		Base:   results[0],
		Bull:   results[1],
		Bear:   results[2],
	}, nil
}

// MaterializeDrivers expands one scenario's assumptions into per-year
// driver paths. Growth and operating margin fade from their base-period
// values to the terminal targets; the intensity drivers fade from the
// snapshot's current ratios to the assumed terminal ratios.
func MaterializeDrivers(snap models.FinancialSnapshot, a models.Assumptions) (forecast.DriverPaths, error) {
	var paths forecast.DriverPaths
	var err error

	schedule := func(start, end float64) []float64 {
		if err != nil {
			return nil
		}
		var s []float64
		s, err = fade.Schedule(a.FadeMethod, start, end, a.HorizonYears)
		return s
	}

	baseRatio := func(amount float64) float64 {
		if snap.Revenue == 0 {
			return 0
		}
		return amount / snap.Revenue
	}

	paths.Growth = schedule(a.StartGrowth.Value, a.TerminalGrowth.Value)
	paths.OperatingMargin = schedule(snap.OperatingMargin, a.TargetOperatingMargin.Value)
	paths.DAPctRevenue = schedule(baseRatio(snap.DA), a.DAPctRevenue.Value)
	paths.SBCPctRevenue = schedule(baseRatio(snap.SBC), a.SBCPctRevenue.Value)
	paths.CapexPctRevenue = schedule(baseRatio(snap.Capex), a.CapexPctRevenue.Value)
	paths.NWCPctRevenueDelta = schedule(a.NWCPctRevenueDelta.Value, a.NWCPctRevenueDelta.Value)

	if err != nil {
		return forecast.DriverPaths{}, err
	}
	return paths, nil
}

func runOne(snap models.FinancialSnapshot, a models.Assumptions) (models.ValuationResult, error) {
	paths, err := MaterializeDrivers(snap, a)
	if err != nil {
		return models.ValuationResult{}, err
	}

	rows, err := forecast.Build(snap, paths, a.TaxRate.Value)
	if err != nil {
		return models.ValuationResult{}, err
	}

	disc, err := valuation.Discount(valuation.DiscountInput{
		Forecast:       rows,
		CostOfCapital:  a.CostOfCapital.Value,
		TerminalGrowth: a.TerminalGrowth.Value,
		TerminalMethod: a.TerminalMethod,
		ExitMultiple:   a.ExitMultiple.Value,
		NetDebt:        snap.NetDebt,
		SharesOut:      snap.SharesOut,
	})
	if err != nil {
		return models.ValuationResult{}, err
	}

	return models.ValuationResult{
		Scenario:        a.Scenario,
		Forecast:        disc.Forecast,
		TerminalValue:   disc.TerminalValue,
		PVTerminalValue: disc.PVTerminalValue,
		EnterpriseValue: disc.EnterpriseValue,
		EquityValue:     disc.EquityValue,
		ValuePerShare:   disc.ValuePerShare,
		Assumptions:     a,
	}, nil
}
