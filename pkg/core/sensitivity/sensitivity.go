// Package sensitivity re-discounts the Base scenario's cash flows across
// a grid of (cost of capital, terminal growth) pairs. The operating
// forecast is reused as-is; only the discounting varies per cell. Cells
// where the Gordon perpetuity is undefined are marked N/A rather than
// failing the grid — the one partial-failure tolerance in the engine.
package sensitivity

import (
	"errors"

	"dcfanalyst/pkg/core/valuation"
	"dcfanalyst/pkg/models"
)

// AxisAround builds an odd-length axis of n values centered on center,
// stepped by step. Used to span the grid around the Base assumptions.
func AxisAround(center, step float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n%2 == 0 {
		n++
	}
	axis := make([]float64, n)
	half := n / 2
	for i := range axis {
		axis[i] = center + float64(i-half)*step
	}
	return axis
}

// Analyze populates the dense grid: one Discount call per cell over the
// Base forecast. Deterministic — identical inputs always yield identical
// grids.
func Analyze(base models.ValuationResult, snap models.FinancialSnapshot, waccAxis, growthAxis []float64) (models.SensitivityGrid, error) {
	if len(waccAxis) == 0 || len(growthAxis) == 0 {
		return models.SensitivityGrid{}, &models.InvalidAssumptionError{
			Field:  "sensitivity_axes",
			Reason: "both grid axes must be non-empty",
		}
	}

	grid := models.SensitivityGrid{
		CostOfCapitalAxis:  append([]float64(nil), waccAxis...),
		TerminalGrowthAxis: append([]float64(nil), growthAxis...),
		Cells:              make([][]models.SensitivityCell, len(waccAxis)),
	}

	for r, wacc := range waccAxis {
		grid.Cells[r] = make([]models.SensitivityCell, len(growthAxis))
		for c, growth := range growthAxis {
			res, err := valuation.Discount(valuation.DiscountInput{
				Forecast:       base.Forecast,
				CostOfCapital:  wacc,
				TerminalGrowth: growth,
				TerminalMethod: base.Assumptions.TerminalMethod,
				ExitMultiple:   base.Assumptions.ExitMultiple.Value,
				NetDebt:        snap.NetDebt,
				SharesOut:      snap.SharesOut,
			})
			if err != nil {
				var tvErr *valuation.InvalidTerminalValueError
				if errors.As(err, &tvErr) {
					// Undefined perpetuity: flag the cell, keep the grid.
					grid.Cells[r][c] = models.SensitivityCell{Valid: false}
					continue
				}
				return models.SensitivityGrid{}, err
			}
			grid.Cells[r][c] = models.SensitivityCell{ValuePerShare: res.ValuePerShare, Valid: true}
		}
	}

	return grid, nil
}
