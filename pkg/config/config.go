// Package config loads a valuation run's configuration: a YAML run file
// for the structural choices (horizon, fade and terminal methods,
// scenario deltas, sensitivity spans) and an optional HJSON override file
// for analyst-supplied assumption values. Secrets and endpoints come from
// the environment, loaded via godotenv in the entry point.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"dcfanalyst/pkg/core/scenario"
	"dcfanalyst/pkg/models"
)

// SensitivitySpan describes one grid axis: points centered on the Base
// value with the given step. Points is rounded up to odd.
type SensitivitySpan struct {
	Step   float64 `yaml:"step"`
	Points int     `yaml:"points"`
}

// RunConfig is the YAML run file.
type RunConfig struct {
	Ticker string `yaml:"ticker"`

	HorizonYears   int                   `yaml:"horizon_years"`
	FadeMethod     models.FadeMethod     `yaml:"fade_method"`
	TerminalMethod models.TerminalMethod `yaml:"terminal_method"`
	ExitMultiple   float64               `yaml:"exit_multiple"`

	ScenarioDeltas *scenario.Deltas `yaml:"scenario_deltas"`

	WACCSpan   SensitivitySpan `yaml:"wacc_span"`
	GrowthSpan SensitivitySpan `yaml:"growth_span"`

	// Optional HJSON file of assumption value overrides.
	OverridesFile string `yaml:"overrides_file"`
}

// Defaults mirror the analysis defaults of the run orchestrator.
func defaultConfig() RunConfig {
	return RunConfig{
		HorizonYears:   5,
		FadeMethod:     models.FadeLinear,
		TerminalMethod: models.TerminalGordon,
		WACCSpan:       SensitivitySpan{Step: 0.005, Points: 5},
		GrowthSpan:     SensitivitySpan{Step: 0.0025, Points: 5},
	}
}

// Load reads the YAML run file, applying defaults for absent fields.
func Load(path string) (RunConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("reading run config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parsing run config %s: %w", path, err)
	}

	if cfg.Ticker == "" {
		return RunConfig{}, fmt.Errorf("run config %s: ticker is required", path)
	}
	if cfg.HorizonYears < 1 {
		return RunConfig{}, fmt.Errorf("run config %s: horizon_years must be >= 1", path)
	}
	return cfg, nil
}

// Deltas returns the configured scenario shifts, or the house defaults.
func (c RunConfig) Deltas() scenario.Deltas {
	if c.ScenarioDeltas != nil {
		return *c.ScenarioDeltas
	}
	return scenario.DefaultDeltas()
}

// Overrides maps assumption field names to analyst-supplied values, e.g.
//
//	{
//	  // house view: decelerating hardware cycle
//	  start_growth: 0.06
//	  cost_of_capital: 0.095
//	}
//
// HJSON so analysts can comment their reasoning in place.
type Overrides map[string]float64

// LoadOverrides parses the HJSON override file. A missing path yields an
// empty set, not an error; overrides are optional.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return nil, fmt.Errorf("reading overrides: %w", err)
	}

	// Round-trip through standard JSON: hjson's own decode target types
	// vary by node kind, plain JSON gives us a flat numeric map.
	var raw interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", path, err)
	}
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing overrides %s: %w", path, err)
	}

	var out Overrides
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, fmt.Errorf("overrides %s must be a flat map of numeric values: %w", path, err)
	}
	return out, nil
}

// Apply merges overrides onto an assumption set. Overridden fields are
// retagged OVERRIDE so they label as HIGH confidence. Unknown field names
// fail loudly rather than being dropped.
func (o Overrides) Apply(a models.Assumptions) (models.Assumptions, error) {
	targets := map[string]*models.Annotated{
		"start_growth":            &a.StartGrowth,
		"terminal_growth":         &a.TerminalGrowth,
		"target_operating_margin": &a.TargetOperatingMargin,
		"da_pct_revenue":          &a.DAPctRevenue,
		"sbc_pct_revenue":         &a.SBCPctRevenue,
		"capex_pct_revenue":       &a.CapexPctRevenue,
		"nwc_pct_revenue_delta":   &a.NWCPctRevenueDelta,
		"tax_rate":                &a.TaxRate,
		"cost_of_capital":         &a.CostOfCapital,
		"exit_multiple":           &a.ExitMultiple,
	}

	for field, value := range o {
		dst, ok := targets[field]
		if !ok {
			return models.Assumptions{}, fmt.Errorf("unknown override field %q", field)
		}
		*dst = models.Annotated{Value: value, Source: models.ProvenanceOverride}
	}
	return a, nil
}
