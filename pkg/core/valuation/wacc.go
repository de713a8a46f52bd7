package valuation

import "dcfanalyst/pkg/models"

// WACCBreakdown holds the intermediate rates behind a derived cost of
// capital, kept for display alongside the valuation.
type WACCBreakdown struct {
	CostOfEquity       float64
	AfterTaxCostOfDebt float64
	WeightEquity       float64
	WeightDebt         float64
	WACC               float64
}

// DeriveWACC computes a cost of capital from CAPM components and a target
// capital structure:
//
//	Ke   = Rf + beta * ERP
//	Kd   = pre-tax Kd * (1 - t)
//	WACC = Ke * E/V + Kd * D/V, with D/E = x giving D/V = x/(1+x)
func DeriveWACC(c models.WACCComponents, taxRate float64) WACCBreakdown {
	ke := c.RiskFreeRate.Value + c.Beta.Value*c.EquityRiskPremium.Value
	kd := c.PreTaxCostOfDebt.Value * (1 - taxRate)

	de := c.DebtToEquity.Value
	wd := de / (1 + de)
	we := 1.0 / (1 + de)

	return WACCBreakdown{
		CostOfEquity:       ke,
		AfterTaxCostOfDebt: kd,
		WeightEquity:       we,
		WeightDebt:         wd,
		WACC:               ke*we + kd*wd,
	}
}
