package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"dcfanalyst/pkg/config"
	"dcfanalyst/pkg/core/calibrate"
	"dcfanalyst/pkg/core/store"
	"dcfanalyst/pkg/core/validate"
	"dcfanalyst/pkg/models"
)

// memRepo is an in-memory RunRepository for pipeline tests.
type memRepo struct {
	records []*store.RunRecord
	saves   int
}

func (m *memRepo) Save(ctx context.Context, rec *store.RunRecord) error {
	if rec.RunID == "" {
		rec.RunID = time.Now().Format("20060102150405.000000000")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.records = append(m.records, rec)
	m.saves++
	return nil
}

func (m *memRepo) Latest(ctx context.Context, ticker string) (*store.RunRecord, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Ticker == ticker {
			return m.records[i], nil
		}
	}
	return nil, nil
}

func testSnapshot() models.FinancialSnapshot {
	return models.FinancialSnapshot{
		Ticker:          "AAPL",
		FiscalYear:      2024,
		Currency:        "USD",
		Revenue:         391035,
		OperatingMargin: 0.3151,
		DA:              11445,
		SBC:             11688,
		Capex:           9447,
		NetDebt:         76686,
		SharesOut:       15117,
	}
}

func testHistory() calibrate.History {
	return calibrate.History{
		Revenue: map[int]float64{
			2021: 365817, 2022: 394328, 2023: 383285, 2024: 391035,
		},
		OperatingIncome: map[int]float64{
			2021: 108949, 2022: 119437, 2023: 114301, 2024: 123216,
		},
		DA: map[int]float64{
			2021: 11284, 2022: 11104, 2023: 11519, 2024: 11445,
		},
		Capex: map[int]float64{
			2021: 11085, 2022: 10708, 2023: 10959, 2024: 9447,
		},
	}
}

func testConfig() config.RunConfig {
	return config.RunConfig{
		Ticker:         "AAPL",
		HorizonYears:   5,
		FadeMethod:     models.FadeLinear,
		TerminalMethod: models.TerminalGordon,
		WACCSpan:       config.SensitivitySpan{Step: 0.005, Points: 5},
		GrowthSpan:     config.SensitivitySpan{Step: 0.0025, Points: 5},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	repo := &memRepo{}
	o := New(repo, zap.NewNop().Sugar())

	rec, err := o.Run(context.Background(), testSnapshot(), testHistory(), testConfig(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1", repo.saves)
	}
	if rec.RunID == "" {
		t.Error("record has no run id")
	}
	if len(rec.InputHash) != 64 {
		t.Errorf("input hash length = %d, want 64 hex chars", len(rec.InputHash))
	}

	set := rec.Scenarios
	if set.Base.ValuePerShare <= 0 {
		t.Errorf("base per-share = %v, want positive", set.Base.ValuePerShare)
	}
	if !(set.Bull.ValuePerShare > set.Base.ValuePerShare) {
		t.Errorf("bull %v should exceed base %v", set.Bull.ValuePerShare, set.Base.ValuePerShare)
	}
	if !(set.Bear.ValuePerShare < set.Base.ValuePerShare) {
		t.Errorf("bear %v should trail base %v", set.Bear.ValuePerShare, set.Base.ValuePerShare)
	}

	grid := rec.Sensitivity
	if len(grid.CostOfCapitalAxis) != 5 || len(grid.TerminalGrowthAxis) != 5 {
		t.Fatalf("grid axes = %dx%d, want 5x5",
			len(grid.CostOfCapitalAxis), len(grid.TerminalGrowthAxis))
	}
	center := grid.Cells[2][2]
	if !center.Valid {
		t.Fatal("center cell should be valid")
	}
	if math.Abs(center.ValuePerShare-set.Base.ValuePerShare) > 1e-9 {
		t.Errorf("center cell = %v, want base per-share %v",
			center.ValuePerShare, set.Base.ValuePerShare)
	}
}

func TestRun_ReusesPriorRunOnIdenticalInputs(t *testing.T) {
	repo := &memRepo{}
	o := New(repo, zap.NewNop().Sugar())
	ctx := context.Background()

	first, err := o.Run(ctx, testSnapshot(), testHistory(), testConfig(), nil)
	if err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	second, err := o.Run(ctx, testSnapshot(), testHistory(), testConfig(), nil)
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}

	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1: identical inputs should not recompute", repo.saves)
	}
	if second.RunID != first.RunID {
		t.Errorf("second run id = %s, want reuse of %s", second.RunID, first.RunID)
	}
}

func TestRun_OverrideChangesInputsAndRecomputes(t *testing.T) {
	repo := &memRepo{}
	o := New(repo, zap.NewNop().Sugar())
	ctx := context.Background()

	first, err := o.Run(ctx, testSnapshot(), testHistory(), testConfig(), nil)
	if err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	second, err := o.Run(ctx, testSnapshot(), testHistory(), testConfig(),
		config.Overrides{"cost_of_capital": 0.11})
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}

	if repo.saves != 2 {
		t.Errorf("saves = %d, want 2: changed overrides must recompute", repo.saves)
	}
	if second.InputHash == first.InputHash {
		t.Error("input hash should change when an override changes")
	}

	a := second.Scenarios.Base.Assumptions.CostOfCapital
	if a.Value != 0.11 || a.Source != models.ProvenanceOverride {
		t.Errorf("overridden cost of capital = %+v, want 0.11 tagged OVERRIDE", a)
	}
	if a.Confidence != models.ConfidenceHigh {
		t.Errorf("override confidence = %s, want HIGH", a.Confidence)
	}
}

func TestRun_ValidationFailureSavesNothing(t *testing.T) {
	repo := &memRepo{}
	o := New(repo, zap.NewNop().Sugar())

	snap := testSnapshot()
	snap.SharesOut = 0

	_, err := o.Run(context.Background(), snap, testHistory(), testConfig(), nil)
	var vErr *validate.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if vErr.Field != "shares_out" {
		t.Errorf("failing field = %q, want shares_out", vErr.Field)
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, want 0 on validation failure", repo.saves)
	}
}
