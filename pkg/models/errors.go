package models

import "fmt"

// InvalidAssumptionError marks a malformed driver or fade parameter. It is
// fatal: the engine never computes on a partially valid assumption set.
type InvalidAssumptionError struct {
	Field  string
	Reason string
}

func (e *InvalidAssumptionError) Error() string {
	return fmt.Sprintf("invalid assumption %q: %s", e.Field, e.Reason)
}
