package valuation

import "fmt"

// InvalidTerminalValueError marks a Gordon capitalization where the cost
// of capital does not exceed terminal growth: the perpetuity is undefined
// and the run must abort rather than emit a finite value.
type InvalidTerminalValueError struct {
	CostOfCapital  float64
	TerminalGrowth float64
}

func (e *InvalidTerminalValueError) Error() string {
	return fmt.Sprintf(
		"terminal value undefined: cost of capital %.4f must exceed terminal growth %.4f",
		e.CostOfCapital, e.TerminalGrowth,
	)
}
