// Package valuation discounts an operating forecast into a per-share
// value: discount factors, present values, terminal value under the
// selected method, and the enterprise-to-equity bridge.
package valuation

import (
	"fmt"
	"math"

	"dcfanalyst/pkg/models"
)

// DiscountInput carries one scenario's cash flows and capitalization
// parameters. The forecast rows must be populated through UnleveredFCF;
// DiscountFactor and PresentValue are filled here.
type DiscountInput struct {
	Forecast       []models.ForecastYear
	CostOfCapital  float64
	TerminalGrowth float64
	TerminalMethod models.TerminalMethod
	ExitMultiple   float64 // EV/EBITDA, exit-multiple method only
	NetDebt        float64
	SharesOut      float64
}

// DiscountResult is the discounted view of one forecast.
type DiscountResult struct {
	Forecast        []models.ForecastYear
	TerminalValue   float64
	PVTerminalValue float64
	EnterpriseValue float64
	EquityValue     float64
	ValuePerShare   float64
}

// Discount computes df[i] = 1/(1+wacc)^(i+1), pv[i] = fcf[i]*df[i], the
// terminal value and the equity bridge. The input forecast is not
// mutated; discounted rows are returned as a fresh slice.
func Discount(in DiscountInput) (DiscountResult, error) {
	if len(in.Forecast) == 0 {
		return DiscountResult{}, &models.InvalidAssumptionError{
			Field:  "forecast",
			Reason: "cannot discount an empty forecast",
		}
	}
	if in.SharesOut <= 0 {
		return DiscountResult{}, &models.InvalidAssumptionError{
			Field:  "shares_out",
			Reason: fmt.Sprintf("share count must be positive, got %v", in.SharesOut),
		}
	}

	rows := make([]models.ForecastYear, len(in.Forecast))
	copy(rows, in.Forecast)

	var pvSum float64
	for i := range rows {
		df := 1.0 / math.Pow(1.0+in.CostOfCapital, float64(i+1))
		rows[i].DiscountFactor = df
		rows[i].PresentValue = rows[i].UnleveredFCF * df
		pvSum += rows[i].PresentValue
	}

	tv, err := terminalValue(in)
	if err != nil {
		return DiscountResult{}, err
	}

	finalDF := rows[len(rows)-1].DiscountFactor
	pvTerminal := tv * finalDF

	ev := pvSum + pvTerminal
	equity := ev - in.NetDebt

	return DiscountResult{
		Forecast:        rows,
		TerminalValue:   tv,
		PVTerminalValue: pvTerminal,
		EnterpriseValue: ev,
		EquityValue:     equity,
		ValuePerShare:   equity / in.SharesOut,
	}, nil
}

// terminalValue computes the value attributed to cash flows beyond the
// horizon. Gordon capitalizes the grown final-year UFCF; exit-multiple
// applies an EV/EBITDA multiple to the terminal year.
func terminalValue(in DiscountInput) (float64, error) {
	last := in.Forecast[len(in.Forecast)-1]

	switch in.TerminalMethod {
	case models.TerminalGordon:
		if in.CostOfCapital <= in.TerminalGrowth {
			return 0, &InvalidTerminalValueError{
				CostOfCapital:  in.CostOfCapital,
				TerminalGrowth: in.TerminalGrowth,
			}
		}
		return last.UnleveredFCF * (1 + in.TerminalGrowth) / (in.CostOfCapital - in.TerminalGrowth), nil

	case models.TerminalExitMultiple:
		terminalEBITDA := last.EBIT + last.DAAddback
		return in.ExitMultiple * terminalEBITDA, nil

	default:
		return 0, &models.InvalidAssumptionError{
			Field:  "terminal_method",
			Reason: "unknown terminal-value method " + string(in.TerminalMethod),
		}
	}
}
