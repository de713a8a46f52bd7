// Package confidence maps assumption provenance onto the HIGH/MED/LOW
// tiers shown next to every number downstream. The mapping is total over
// the closed provenance set; anything else fails loudly instead of
// defaulting, per the project's no-silent-garbage policy.
package confidence

import (
	"fmt"

	"dcfanalyst/pkg/models"
)

// UnknownProvenanceError marks a provenance tag outside the closed set.
type UnknownProvenanceError struct {
	Tag models.Provenance
}

func (e *UnknownProvenanceError) Error() string {
	return fmt.Sprintf("unknown provenance tag %q", string(e.Tag))
}

// Label maps a provenance tag to its confidence tier. Filed facts and
// explicit analyst overrides are HIGH, historically computed values MED,
// heuristic defaults LOW.
func Label(p models.Provenance) (models.ConfidenceTier, error) {
	switch p {
	case models.ProvenanceFiled, models.ProvenanceOverride:
		return models.ConfidenceHigh, nil
	case models.ProvenanceComputed:
		return models.ConfidenceMed, nil
	case models.ProvenanceDefault:
		return models.ConfidenceLow, nil
	default:
		return "", &UnknownProvenanceError{Tag: p}
	}
}

// Annotate builds an annotated value with its tier resolved.
func Annotate(value float64, p models.Provenance) (models.Annotated, error) {
	tier, err := Label(p)
	if err != nil {
		return models.Annotated{}, err
	}
	return models.Annotated{Value: value, Source: p, Confidence: tier}, nil
}

// AnnotateAssumptions resolves the tier on every annotated field of an
// assumption set, returning a labeled copy. Values are never altered.
func AnnotateAssumptions(a models.Assumptions) (models.Assumptions, error) {
	fields := []*models.Annotated{
		&a.StartGrowth, &a.TerminalGrowth, &a.TargetOperatingMargin,
		&a.DAPctRevenue, &a.SBCPctRevenue, &a.CapexPctRevenue,
		&a.NWCPctRevenueDelta, &a.TaxRate, &a.CostOfCapital, &a.ExitMultiple,
	}
	if a.WACCInputs != nil {
		w := *a.WACCInputs
		a.WACCInputs = &w
		fields = append(fields,
			&w.RiskFreeRate, &w.EquityRiskPremium, &w.Beta,
			&w.PreTaxCostOfDebt, &w.DebtToEquity,
		)
	}

	for _, f := range fields {
		tier, err := Label(f.Source)
		if err != nil {
			return models.Assumptions{}, err
		}
		f.Confidence = tier
	}
	return a, nil
}
