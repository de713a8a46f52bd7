// Package models defines the shared value objects exchanged between the
// valuation engine's stages: the normalized base-period snapshot, the
// per-scenario driver assumptions, the year-by-year forecast rows and the
// final scenario/sensitivity outputs. Everything here is created once per
// run and never mutated afterwards.
package models

// =============================================================================
// ENUMERATIONS
// =============================================================================

// FadeMethod selects how a driver interpolates from its starting rate to
// its terminal rate across the forecast horizon.
type FadeMethod string

const (
	FadeLinear      FadeMethod = "linear"
	FadePiecewise   FadeMethod = "piecewise"
	FadeExponential FadeMethod = "exponential"
)

// TerminalMethod selects how value beyond the explicit horizon is computed.
type TerminalMethod string

const (
	TerminalGordon       TerminalMethod = "gordon"
	TerminalExitMultiple TerminalMethod = "exit-multiple"
)

// Provenance records where a numeric assumption came from. It is a closed
// set: the confidence labeler rejects anything outside it rather than
// defaulting silently.
type Provenance string

const (
	// ProvenanceFiled marks values read directly from structured filings.
	ProvenanceFiled Provenance = "FILED"
	// ProvenanceComputed marks values derived by averaging or
	// interpolating historical filings.
	ProvenanceComputed Provenance = "COMPUTED"
	// ProvenanceDefault marks heuristic fallbacks (industry norms,
	// hardcoded constants).
	ProvenanceDefault Provenance = "DEFAULT"
	// ProvenanceOverride marks explicit analyst overrides from a run's
	// override file.
	ProvenanceOverride Provenance = "OVERRIDE"
)

// ConfidenceTier is the provenance-based trust label attached to every
// numeric assumption for downstream display.
type ConfidenceTier string

const (
	ConfidenceHigh ConfidenceTier = "HIGH"
	ConfidenceMed  ConfidenceTier = "MED"
	ConfidenceLow  ConfidenceTier = "LOW"
)

// =============================================================================
// INPUTS
// =============================================================================

// FinancialSnapshot holds the immutable base-period facts the forecast
// compounds from. Produced by the retrieval/normalization layer; the
// engine treats it as read-only.
type FinancialSnapshot struct {
	Ticker     string `json:"ticker"`
	FiscalYear int    `json:"fiscal_year"`
	Currency   string `json:"currency"`

	Revenue         float64 `json:"revenue"`          // Millions
	OperatingMargin float64 `json:"operating_margin"` // EBIT / Revenue
	DA              float64 `json:"da"`               // Depreciation & amortization
	SBC             float64 `json:"sbc"`              // Stock-based compensation
	Capex           float64 `json:"capex"`            // Positive magnitude
	NetDebt         float64 `json:"net_debt"`         // Debt - cash, Millions
	SharesOut       float64 `json:"shares_out"`       // Millions
}

// Annotated couples a numeric assumption with its provenance tag and the
// confidence tier the labeler derived from it.
type Annotated struct {
	Value      float64        `json:"value"`
	Source     Provenance     `json:"source"`
	Confidence ConfidenceTier `json:"confidence,omitempty"`
}

// WACCComponents are the CAPM inputs used to derive a cost of capital when
// one is not supplied directly.
type WACCComponents struct {
	RiskFreeRate      Annotated `json:"risk_free_rate"`
	EquityRiskPremium Annotated `json:"equity_risk_premium"`
	Beta              Annotated `json:"beta"`
	PreTaxCostOfDebt  Annotated `json:"pre_tax_cost_of_debt"`
	DebtToEquity      Annotated `json:"debt_to_equity"`
}

// Assumptions is one scenario's full driver set. Growth and operating
// margin fade from their starting values to terminal targets; the
// intensity drivers (D&A, SBC, capex, NWC) are percentages of revenue.
type Assumptions struct {
	Scenario     string     `json:"scenario"` // "base", "bull", "bear"
	HorizonYears int        `json:"horizon_years"`
	FadeMethod   FadeMethod `json:"fade_method"`

	StartGrowth    Annotated `json:"start_growth"`
	TerminalGrowth Annotated `json:"terminal_growth"`

	// Margin trajectory: fades from the snapshot's base-period margin to
	// this terminal target.
	TargetOperatingMargin Annotated `json:"target_operating_margin"`

	DAPctRevenue    Annotated `json:"da_pct_revenue"`
	SBCPctRevenue   Annotated `json:"sbc_pct_revenue"`
	CapexPctRevenue Annotated `json:"capex_pct_revenue"`
	// Change in net working capital as a fraction of the revenue delta.
	NWCPctRevenueDelta Annotated `json:"nwc_pct_revenue_delta"`

	TaxRate Annotated `json:"tax_rate"`

	CostOfCapital Annotated       `json:"cost_of_capital"`
	WACCInputs    *WACCComponents `json:"wacc_inputs,omitempty"` // Optional CAPM derivation

	TerminalMethod TerminalMethod `json:"terminal_method"`
	ExitMultiple   Annotated      `json:"exit_multiple"` // EV/EBITDA, exit-multiple method only
}

// =============================================================================
// OUTPUTS
// =============================================================================

// ForecastYear is one row of the operating forecast, populated from
// revenue down to present value. Rows are ordered by Year ascending and
// immutable once computed.
type ForecastYear struct {
	Year           int     `json:"year"` // 1-based forecast year index
	Growth         float64 `json:"growth"`
	Revenue        float64 `json:"revenue"`
	EBIT           float64 `json:"ebit"`
	Taxes          float64 `json:"taxes"`
	NOPAT          float64 `json:"nopat"`
	DAAddback      float64 `json:"da_addback"`
	SBCAddback     float64 `json:"sbc_addback"`
	DeltaNWC       float64 `json:"delta_nwc"`
	Capex          float64 `json:"capex"`
	UnleveredFCF   float64 `json:"unlevered_fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// ValuationResult is one scenario's complete valuation: the discounted
// forecast, the terminal-value bridge and the assumptions that produced it.
type ValuationResult struct {
	Scenario        string         `json:"scenario"`
	Forecast        []ForecastYear `json:"forecast"`
	TerminalValue   float64        `json:"terminal_value"`
	PVTerminalValue float64        `json:"pv_terminal_value"`
	EnterpriseValue float64        `json:"enterprise_value"`
	EquityValue     float64        `json:"equity_value"`
	ValuePerShare   float64        `json:"value_per_share"`
	Assumptions     Assumptions    `json:"assumptions"`
}

// ScenarioSet is the full three-case output. Downstream reporting expects
// all three cases; a partial set is never valid output.
type ScenarioSet struct {
	Ticker string          `json:"ticker"`
	Base   ValuationResult `json:"base"`
	Bull   ValuationResult `json:"bull"`
	Bear   ValuationResult `json:"bear"`
}

// SensitivityCell is one grid slot: a per-share value, or an explicit N/A
// marker where the terminal value is undefined.
type SensitivityCell struct {
	ValuePerShare float64 `json:"value_per_share"`
	Valid         bool    `json:"valid"`
}

// SensitivityGrid is a dense 2D table of per-share values: rows indexed by
// cost of capital, columns by terminal growth, computed over the Base
// scenario's cash flows.
type SensitivityGrid struct {
	CostOfCapitalAxis  []float64           `json:"cost_of_capital_axis"`
	TerminalGrowthAxis []float64           `json:"terminal_growth_axis"`
	Cells              [][]SensitivityCell `json:"cells"` // Cells[row][col]
}
