package edgar

import (
	"fmt"

	"dcfanalyst/pkg/core/calibrate"
	"dcfanalyst/pkg/models"
)

// CompanyFacts mirrors the SEC companyfacts JSON: taxonomies keyed by
// concept tag, each with per-unit observation lists.
type CompanyFacts struct {
	CIK        int                        `json:"cik"`
	EntityName string                     `json:"entityName"`
	Facts      map[string]map[string]Fact `json:"facts"` // taxonomy -> tag -> fact
}

// Fact is one XBRL concept's observations across filings.
type Fact struct {
	Units map[string][]Observation `json:"units"`
}

// Observation is a single reported value.
type Observation struct {
	End         string  `json:"end"`
	Val         float64 `json:"val"`
	FiscalYear  int     `json:"fy"`
	FiscalPer   string  `json:"fp"`
	Form        string  `json:"form"`
	AccessionNo string  `json:"accn"`
}

// XBRL tag fallback chains: companies report the same economic concept
// under different tags, so extraction walks each list in order and takes
// the first tag with usable annual data.
var (
	revenueTags = []string{
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"Revenues",
		"SalesRevenueNet",
	}
	operatingIncomeTags = []string{"OperatingIncomeLoss"}
	daTags              = []string{
		"DepreciationDepletionAndAmortization",
		"DepreciationAmortizationAndAccretionNet",
		"DepreciationAndAmortization",
	}
	sbcTags   = []string{"ShareBasedCompensation"}
	capexTags = []string{
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"PaymentsToAcquireProductiveAssets",
	}
	cashTags = []string{"CashAndCashEquivalentsAtCarryingValue"}
	debtTags = []string{"LongTermDebt", "LongTermDebtNoncurrent"}
)

// AnnualSeries extracts fiscal-year observations for the first tag in the
// fallback chain that has any. Only full-year rows from annual reports
// count.
func (cf *CompanyFacts) AnnualSeries(unit string, tags ...string) map[int]float64 {
	gaap := cf.Facts["us-gaap"]
	for _, tag := range tags {
		fact, ok := gaap[tag]
		if !ok {
			continue
		}
		series := make(map[int]float64)
		for _, obs := range fact.Units[unit] {
			if obs.FiscalPer == "FY" && (obs.Form == "10-K" || obs.Form == "10-K/A" || obs.Form == "20-F") {
				series[obs.FiscalYear] = obs.Val
			}
		}
		if len(series) > 0 {
			return series
		}
	}
	return nil
}

// History assembles the historical metric series calibration consumes.
// Values are scaled from dollars to millions.
func (cf *CompanyFacts) History() calibrate.History {
	return calibrate.History{
		Revenue:         toMillions(cf.AnnualSeries("USD", revenueTags...)),
		OperatingIncome: toMillions(cf.AnnualSeries("USD", operatingIncomeTags...)),
		DA:              toMillions(cf.AnnualSeries("USD", daTags...)),
		SBC:             toMillions(cf.AnnualSeries("USD", sbcTags...)),
		Capex:           toMillions(cf.AnnualSeries("USD", capexTags...)),
	}
}

// Snapshot builds the base-period snapshot from the latest fiscal year
// with reported revenue. Net debt and shares are best-effort: missing
// concepts land as zero and are refined by overrides downstream.
func (cf *CompanyFacts) Snapshot(ticker string) (models.FinancialSnapshot, error) {
	revenue := toMillions(cf.AnnualSeries("USD", revenueTags...))
	if len(revenue) == 0 {
		return models.FinancialSnapshot{}, fmt.Errorf("no annual revenue reported for %s", cf.EntityName)
	}

	latest := 0
	for year := range revenue {
		if year > latest {
			latest = year
		}
	}

	atYear := func(series map[int]float64) float64 { return series[latest] }

	opInc := toMillions(cf.AnnualSeries("USD", operatingIncomeTags...))
	margin := 0.0
	if revenue[latest] > 0 {
		margin = atYear(opInc) / revenue[latest]
	}

	cash := toMillions(cf.AnnualSeries("USD", cashTags...))
	debt := toMillions(cf.AnnualSeries("USD", debtTags...))

	shares := cf.AnnualSeries("shares", "CommonStockSharesOutstanding", "WeightedAverageNumberOfDilutedSharesOutstanding")

	return models.FinancialSnapshot{
		Ticker:          ticker,
		FiscalYear:      latest,
		Currency:        "USD",
		Revenue:         revenue[latest],
		OperatingMargin: margin,
		DA:              atYear(toMillions(cf.AnnualSeries("USD", daTags...))),
		SBC:             atYear(toMillions(cf.AnnualSeries("USD", sbcTags...))),
		Capex:           atYear(toMillions(cf.AnnualSeries("USD", capexTags...))),
		NetDebt:         atYear(debt) - atYear(cash),
		SharesOut:       shares[latest] / 1e6,
	}, nil
}

func toMillions(series map[int]float64) map[int]float64 {
	if series == nil {
		return nil
	}
	scaled := make(map[int]float64, len(series))
	for year, v := range series {
		scaled[year] = v / 1e6
	}
	return scaled
}
