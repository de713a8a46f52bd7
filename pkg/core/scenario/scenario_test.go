package scenario

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dcfanalyst/pkg/core/valuation"
	"dcfanalyst/pkg/models"
)

func baseInputs() (models.FinancialSnapshot, models.Assumptions) {
	snap := models.FinancialSnapshot{
		Ticker:          "TEST",
		Revenue:         1000,
		OperatingMargin: 0.20,
		DA:              40,
		SBC:             20,
		Capex:           50,
		NetDebt:         50,
		SharesOut:       100,
	}
	a := models.Assumptions{
		Scenario:              "base",
		HorizonYears:          5,
		FadeMethod:            models.FadeLinear,
		StartGrowth:           models.Annotated{Value: 0.20, Source: models.ProvenanceComputed},
		TerminalGrowth:        models.Annotated{Value: 0.03, Source: models.ProvenanceDefault},
		TargetOperatingMargin: models.Annotated{Value: 0.22, Source: models.ProvenanceComputed},
		DAPctRevenue:          models.Annotated{Value: 0.04, Source: models.ProvenanceComputed},
		SBCPctRevenue:         models.Annotated{Value: 0.02, Source: models.ProvenanceComputed},
		CapexPctRevenue:       models.Annotated{Value: 0.05, Source: models.ProvenanceComputed},
		NWCPctRevenueDelta:    models.Annotated{Value: 0.10, Source: models.ProvenanceDefault},
		TaxRate:               models.Annotated{Value: 0.21, Source: models.ProvenanceDefault},
		CostOfCapital:         models.Annotated{Value: 0.10, Source: models.ProvenanceComputed},
		TerminalMethod:        models.TerminalGordon,
	}
	return snap, a
}

func TestRun_ProducesAllThreeCases(t *testing.T) {
	snap, a := baseInputs()

	set, err := Run(snap, a, DefaultDeltas())
	if err != nil {
		t.Fatal(err)
	}

	if set.Base.Scenario != "base" || set.Bull.Scenario != "bull" || set.Bear.Scenario != "bear" {
		t.Errorf("scenario labels = %q/%q/%q", set.Base.Scenario, set.Bull.Scenario, set.Bear.Scenario)
	}
	for _, res := range []models.ValuationResult{set.Base, set.Bull, set.Bear} {
		if len(res.Forecast) != 5 {
			t.Errorf("%s: %d forecast years, want 5", res.Scenario, len(res.Forecast))
		}
	}

	// Bull should be worth more than Base, Bear less.
	if set.Bull.ValuePerShare <= set.Base.ValuePerShare {
		t.Errorf("bull %v not above base %v", set.Bull.ValuePerShare, set.Base.ValuePerShare)
	}
	if set.Bear.ValuePerShare >= set.Base.ValuePerShare {
		t.Errorf("bear %v not below base %v", set.Bear.ValuePerShare, set.Base.ValuePerShare)
	}
}

func TestRun_BaseCaseBridge(t *testing.T) {
	snap, a := baseInputs()

	set, err := Run(snap, a, DefaultDeltas())
	if err != nil {
		t.Fatal(err)
	}
	base := set.Base

	for i := 1; i < len(base.Forecast); i++ {
		if base.Forecast[i].Revenue <= base.Forecast[i-1].Revenue {
			t.Errorf("revenue not strictly increasing at year %d: %v <= %v",
				i+1, base.Forecast[i].Revenue, base.Forecast[i-1].Revenue)
		}
	}

	finalFCF := base.Forecast[len(base.Forecast)-1].UnleveredFCF
	wantTV := finalFCF * 1.03 / (0.10 - 0.03)
	if math.Abs(base.TerminalValue-wantTV) > 1e-9 {
		t.Errorf("terminal value = %v, want %v", base.TerminalValue, wantTV)
	}

	if math.Abs(base.EquityValue-(base.EnterpriseValue-snap.NetDebt)) > 1e-9 {
		t.Errorf("equity %v != enterprise %v - net debt %v",
			base.EquityValue, base.EnterpriseValue, snap.NetDebt)
	}
	if math.Abs(base.ValuePerShare-base.EquityValue/snap.SharesOut) > 1e-9 {
		t.Errorf("per-share %v != equity %v / %v shares",
			base.ValuePerShare, base.EquityValue, snap.SharesOut)
	}
}

func TestRun_Idempotent(t *testing.T) {
	snap, a := baseInputs()

	first, err := Run(snap, a, DefaultDeltas())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(snap, a, DefaultDeltas())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identical inputs produced different scenario sets (-first +second):\n%s", diff)
	}
}

func TestBullBearCases_AreDeltaTransforms(t *testing.T) {
	_, base := baseInputs()
	d := DefaultDeltas()

	bull := BullCase(base, d)
	bear := BearCase(base, d)

	if base.Scenario != "base" || base.StartGrowth.Value != 0.20 {
		t.Fatalf("base assumptions were mutated: %+v", base)
	}
	if math.Abs(bull.CostOfCapital.Value-0.09) > 1e-12 {
		t.Errorf("bull wacc = %v, want 0.09", bull.CostOfCapital.Value)
	}
	if math.Abs(bear.CostOfCapital.Value-0.11) > 1e-12 {
		t.Errorf("bear wacc = %v, want 0.11", bear.CostOfCapital.Value)
	}
	if math.Abs(bull.TerminalGrowth.Value-0.035) > 1e-12 {
		t.Errorf("bull terminal growth = %v, want 0.035", bull.TerminalGrowth.Value)
	}
	if bull.StartGrowth.Source != base.StartGrowth.Source {
		t.Errorf("delta transform changed provenance: %s", bull.StartGrowth.Source)
	}
}

func TestRun_FailureInOneCaseAbortsSet(t *testing.T) {
	snap, a := baseInputs()
	// Base clears the Gordon guard, but the Bull shifts push terminal
	// growth (0.037) above the shifted wacc (0.035).
	a.CostOfCapital.Value = 0.045
	a.TerminalGrowth.Value = 0.032

	_, err := Run(snap, a, DefaultDeltas())

	var tvErr *valuation.InvalidTerminalValueError
	if !errors.As(err, &tvErr) {
		t.Fatalf("got %v, want InvalidTerminalValueError from bull case", err)
	}
}

func TestResolveCostOfCapital_FallsBackToCAPM(t *testing.T) {
	_, a := baseInputs()
	a.CostOfCapital = models.Annotated{}
	a.WACCInputs = &models.WACCComponents{
		RiskFreeRate:      models.Annotated{Value: 0.04, Source: models.ProvenanceDefault},
		EquityRiskPremium: models.Annotated{Value: 0.06, Source: models.ProvenanceDefault},
		Beta:              models.Annotated{Value: 1.0, Source: models.ProvenanceDefault},
		PreTaxCostOfDebt:  models.Annotated{Value: 0.05, Source: models.ProvenanceDefault},
		DebtToEquity:      models.Annotated{Value: 0.3, Source: models.ProvenanceDefault},
	}

	wacc, err := ResolveCostOfCapital(a)
	if err != nil {
		t.Fatal(err)
	}
	if wacc.Value <= 0 || wacc.Source != models.ProvenanceComputed {
		t.Errorf("derived wacc = %+v, want positive COMPUTED value", wacc)
	}

	t.Run("Nothing to derive from", func(t *testing.T) {
		a.WACCInputs = nil
		var invalid *models.InvalidAssumptionError
		if _, err := ResolveCostOfCapital(a); !errors.As(err, &invalid) {
			t.Errorf("got %v, want InvalidAssumptionError", err)
		}
	})
}
