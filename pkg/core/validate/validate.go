// Package validate is the hard gate in front of the valuation engine: it
// rejects inputs that would make any downstream computation meaningless.
// A violation names the failing field and aborts the run; the engine never
// proceeds to partial computation.
package validate

import (
	"fmt"

	"dcfanalyst/pkg/models"
)

// ValidationError identifies exactly which precondition failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// ValuationInputs checks the preconditions shared by every scenario:
// a usable growth horizon, positive base revenue and a positive share
// count. Called once before any forecast is built.
func ValuationInputs(snap models.FinancialSnapshot, a models.Assumptions) error {
	if a.HorizonYears < 1 {
		return &ValidationError{
			Field:  "horizon_years",
			Reason: fmt.Sprintf("forecast horizon must be at least 1 year, got %d", a.HorizonYears),
		}
	}
	if snap.Revenue <= 0 {
		return &ValidationError{
			Field:  "revenue",
			Reason: fmt.Sprintf("base revenue must be positive, got %v", snap.Revenue),
		}
	}
	if snap.SharesOut <= 0 {
		return &ValidationError{
			Field:  "shares_out",
			Reason: fmt.Sprintf("share count must be positive, got %v", snap.SharesOut),
		}
	}
	return nil
}
