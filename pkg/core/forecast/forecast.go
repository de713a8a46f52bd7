// Package forecast builds the year-by-year operating forecast: revenue
// compounded from the base-period snapshot through the unlevered free cash
// flow bridge. Discounting is deferred to the valuation package.
package forecast

import (
	"fmt"

	"dcfanalyst/pkg/models"
)

// DriverPaths holds the materialized per-year driver sequences, one entry
// per forecast year. Growth and operating margin come out of the fade
// scheduler; the intensity drivers are percentages of revenue (NWC of the
// revenue delta). All slices must share the same length.
type DriverPaths struct {
	Growth             []float64
	OperatingMargin    []float64
	DAPctRevenue       []float64
	SBCPctRevenue      []float64
	CapexPctRevenue    []float64
	NWCPctRevenueDelta []float64
}

// Build produces the ordered forecast rows for one scenario.
//
// Per year i (revenue[-1] = snapshot revenue):
//
//	revenue[i] = revenue[i-1] * (1 + growth[i])
//	ebit       = revenue * margin[i]
//	nopat      = ebit - taxes
//	ufcf       = nopat + D&A + SBC - ΔNWC - capex
func Build(snap models.FinancialSnapshot, paths DriverPaths, taxRate float64) ([]models.ForecastYear, error) {
	if snap.Revenue <= 0 {
		return nil, &models.InvalidAssumptionError{
			Field:  "revenue",
			Reason: fmt.Sprintf("base revenue must be positive, got %v", snap.Revenue),
		}
	}
	if len(paths.Growth) == 0 {
		return nil, &models.InvalidAssumptionError{
			Field:  "growth",
			Reason: "growth sequence is empty",
		}
	}
	if err := paths.checkLengths(); err != nil {
		return nil, err
	}

	years := make([]models.ForecastYear, len(paths.Growth))
	prevRevenue := snap.Revenue

	for i := range paths.Growth {
		revenue := prevRevenue * (1 + paths.Growth[i])
		ebit := revenue * paths.OperatingMargin[i]

		// No tax benefit assumed on operating losses.
		taxes := 0.0
		if ebit > 0 {
			taxes = ebit * taxRate
		}
		nopat := ebit - taxes

		da := revenue * paths.DAPctRevenue[i]
		sbc := revenue * paths.SBCPctRevenue[i]
		capex := revenue * paths.CapexPctRevenue[i]
		deltaNWC := (revenue - prevRevenue) * paths.NWCPctRevenueDelta[i]

		years[i] = models.ForecastYear{
			Year:         i + 1,
			Growth:       paths.Growth[i],
			Revenue:      revenue,
			EBIT:         ebit,
			Taxes:        taxes,
			NOPAT:        nopat,
			DAAddback:    da,
			SBCAddback:   sbc,
			DeltaNWC:     deltaNWC,
			Capex:        capex,
			UnleveredFCF: nopat + da + sbc - deltaNWC - capex,
		}
		prevRevenue = revenue
	}

	return years, nil
}

func (p DriverPaths) checkLengths() error {
	n := len(p.Growth)
	drivers := []struct {
		field string
		got   int
	}{
		{"operating_margin", len(p.OperatingMargin)},
		{"da_pct_revenue", len(p.DAPctRevenue)},
		{"sbc_pct_revenue", len(p.SBCPctRevenue)},
		{"capex_pct_revenue", len(p.CapexPctRevenue)},
		{"nwc_pct_revenue_delta", len(p.NWCPctRevenueDelta)},
	}
	for _, d := range drivers {
		if d.got != n {
			return &models.InvalidAssumptionError{
				Field:  d.field,
				Reason: fmt.Sprintf("driver path has %d years, growth has %d", d.got, n),
			}
		}
	}
	return nil
}
