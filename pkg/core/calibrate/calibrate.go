// Package calibrate derives a Base assumption set from a company's
// historical filings: trailing averages for margins and capital
// intensity, a revenue CAGR seed for starting growth, and heuristic
// fallbacks where history is too thin. Every derived number carries the
// provenance tag the confidence labeler turns into a display tier.
package calibrate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"dcfanalyst/pkg/core/confidence"
	"dcfanalyst/pkg/models"
)

// History holds annual metric series keyed by fiscal year, as produced by
// the retrieval layer. Missing metrics are simply absent maps.
type History struct {
	Revenue         map[int]float64
	OperatingIncome map[int]float64
	DA              map[int]float64
	SBC             map[int]float64
	Capex           map[int]float64
}

// Heuristic fallbacks applied when history cannot support a computed
// value. Tagged DEFAULT, so they surface as LOW confidence.
const (
	defaultStartGrowth    = 0.08
	defaultTerminalGrowth = 0.025
	defaultMargin         = 0.15
	defaultDAPct          = 0.04
	defaultSBCPct         = 0.0
	defaultCapexPct       = 0.05
	defaultNWCPct         = 0.10
	defaultTaxRate        = 0.21
	defaultCostOfCapital  = 0.09
	defaultExitMultiple   = 12.0
	defaultHorizonYears   = 5

	// Growth seeds above this are capped: a trailing CAGR from a small
	// base is not a sustainable starting assumption.
	maxStartGrowth = 0.35

	// Minimum observations for a trailing average to count as COMPUTED.
	minObservations = 3
)

// Defaults builds the Base assumption set for a snapshot from its
// history. The run config and any override file refine the result
// afterwards; calibration never fails on thin history, it degrades to
// DEFAULT-tagged fallbacks instead.
func Defaults(snap models.FinancialSnapshot, h History) (models.Assumptions, error) {
	a := models.Assumptions{
		Scenario:       "base",
		HorizonYears:   defaultHorizonYears,
		FadeMethod:     models.FadeLinear,
		TerminalMethod: models.TerminalGordon,
	}

	var err error
	annotate := func(dst *models.Annotated, value float64, p models.Provenance) {
		if err != nil {
			return
		}
		*dst, err = confidence.Annotate(value, p)
	}

	if g, ok := RevenueCAGR(h.Revenue); ok {
		annotate(&a.StartGrowth, math.Min(g, maxStartGrowth), models.ProvenanceComputed)
	} else {
		annotate(&a.StartGrowth, defaultStartGrowth, models.ProvenanceDefault)
	}
	annotate(&a.TerminalGrowth, defaultTerminalGrowth, models.ProvenanceDefault)

	if m, ok := trailingRatio(h.OperatingIncome, h.Revenue); ok {
		annotate(&a.TargetOperatingMargin, m, models.ProvenanceComputed)
	} else {
		annotate(&a.TargetOperatingMargin, defaultMargin, models.ProvenanceDefault)
	}

	if r, ok := trailingRatio(h.DA, h.Revenue); ok {
		annotate(&a.DAPctRevenue, r, models.ProvenanceComputed)
	} else {
		annotate(&a.DAPctRevenue, defaultDAPct, models.ProvenanceDefault)
	}

	if r, ok := trailingRatio(h.SBC, h.Revenue); ok {
		annotate(&a.SBCPctRevenue, r, models.ProvenanceComputed)
	} else {
		annotate(&a.SBCPctRevenue, defaultSBCPct, models.ProvenanceDefault)
	}

	if r, ok := trailingRatio(h.Capex, h.Revenue); ok {
		annotate(&a.CapexPctRevenue, math.Abs(r), models.ProvenanceComputed)
	} else {
		annotate(&a.CapexPctRevenue, defaultCapexPct, models.ProvenanceDefault)
	}

	annotate(&a.NWCPctRevenueDelta, defaultNWCPct, models.ProvenanceDefault)
	annotate(&a.TaxRate, defaultTaxRate, models.ProvenanceDefault)
	annotate(&a.CostOfCapital, defaultCostOfCapital, models.ProvenanceDefault)
	annotate(&a.ExitMultiple, defaultExitMultiple, models.ProvenanceDefault)

	if err != nil {
		return models.Assumptions{}, err
	}
	return a, nil
}

// RevenueCAGR computes the compound annual growth rate across the oldest
// and newest observed years. Needs at least two years of positive
// revenue.
func RevenueCAGR(revenue map[int]float64) (float64, bool) {
	years := sortedYears(revenue)
	if len(years) < 2 {
		return 0, false
	}
	first, last := years[0], years[len(years)-1]
	if revenue[first] <= 0 || revenue[last] <= 0 {
		return 0, false
	}
	span := float64(last - first)
	return math.Pow(revenue[last]/revenue[first], 1/span) - 1, true
}

// trailingRatio returns the mean of metric/revenue across the years both
// series cover. Requires minObservations overlapping years.
func trailingRatio(metric, revenue map[int]float64) (float64, bool) {
	var ratios []float64
	for _, year := range sortedYears(revenue) { // fixed order keeps runs byte-identical
		rev := revenue[year]
		if rev <= 0 {
			continue
		}
		if v, ok := metric[year]; ok {
			ratios = append(ratios, v/rev)
		}
	}
	if len(ratios) < minObservations {
		return 0, false
	}

	mean, err := stats.Mean(ratios)
	if err != nil {
		return 0, false
	}
	return mean, true
}

// MarginVolatility reports the sample standard deviation of the
// historical operating margin, used by reporting to qualify the margin
// assumption. Returns false when history is too thin.
func MarginVolatility(operatingIncome, revenue map[int]float64) (float64, bool) {
	var margins []float64
	for _, year := range sortedYears(revenue) {
		rev := revenue[year]
		if rev <= 0 {
			continue
		}
		if oi, ok := operatingIncome[year]; ok {
			margins = append(margins, oi/rev)
		}
	}
	if len(margins) < minObservations {
		return 0, false
	}

	stdev, err := stats.StandardDeviationSample(margins)
	if err != nil {
		return 0, false
	}
	return stdev, true
}

func sortedYears(series map[int]float64) []int {
	years := make([]int, 0, len(series))
	for y := range series {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
