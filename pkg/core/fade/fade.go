// Package fade materializes driver fade schedules: the year-by-year
// interpolation of a growth or margin rate from its starting value to its
// terminal value across the forecast horizon. Every schedule converges
// exactly to the terminal rate by construction.
package fade

import (
	"math"

	"dcfanalyst/pkg/models"
)

// piecewiseSplit is the breakpoint of the piecewise method: a fast fade
// over the first two forecast years, then a slower fade to terminal.
const piecewiseSplit = 2

// expTailFraction controls the exponential decay constant k: it is solved
// so that the remaining gap to the terminal rate at the final year is this
// fraction of the initial gap, before the exact terminal clamp.
const expTailFraction = 1e-4

// Schedule produces an ordered sequence of `years` rates fading from start
// to end under the given method. The last element always equals end; a
// one-year horizon collapses to just the terminal rate.
func Schedule(method models.FadeMethod, start, end float64, years int) ([]float64, error) {
	if years < 1 {
		return nil, &models.InvalidAssumptionError{
			Field:  "horizon_years",
			Reason: "fade horizon must be at least 1 year",
		}
	}
	if years == 1 {
		return []float64{end}, nil
	}
	if start == end {
		return constant(end, years), nil
	}

	switch method {
	case models.FadeLinear:
		return Linear(start, end, years), nil
	case models.FadeExponential:
		return Exponential(start, end, years), nil
	case models.FadePiecewise:
		return Piecewise(start, (start+end)/2, end, years), nil
	default:
		return nil, &models.InvalidAssumptionError{
			Field:  "fade_method",
			Reason: "unknown fade method " + string(method),
		}
	}
}

// Linear interpolates evenly: rate[i] = start + (end-start)*i/(years-1).
// Callers must pass years >= 2; Schedule guards the degenerate horizons.
func Linear(start, end float64, years int) []float64 {
	rates := make([]float64, years)
	step := (end - start) / float64(years-1)
	for i := range rates {
		rates[i] = start + step*float64(i)
	}
	rates[years-1] = end
	return rates
}

// Exponential decays geometrically toward the terminal rate:
//
//	rate[i] = end + (start-end) * exp(-k*i)
//
// k is solved so the residual gap at the final year is expTailFraction of
// the initial gap, and the final element is clamped exactly to end. The
// rate is essentially converged well before the horizon ends, leaving the
// late years flat at the terminal level.
func Exponential(start, end float64, years int) []float64 {
	k := math.Log(1/expTailFraction) / float64(years-1)
	rates := make([]float64, years)
	for i := range rates {
		rates[i] = end + (start-end)*math.Exp(-k*float64(i))
	}
	rates[years-1] = end
	return rates
}

// Piecewise fades quickly from start toward mid over the first
// piecewiseSplit years, then linearly from mid to end over the remainder.
// Horizons too short to hold both segments degrade to a plain linear fade.
func Piecewise(start, mid, end float64, years int) []float64 {
	if years <= piecewiseSplit+1 {
		return Linear(start, end, years)
	}

	rates := make([]float64, 0, years)
	rates = append(rates, Linear(start, mid, piecewiseSplit+1)...)
	rates = append(rates, Linear(mid, end, years-piecewiseSplit)[1:]...)
	return rates
}

func constant(rate float64, years int) []float64 {
	rates := make([]float64, years)
	for i := range rates {
		rates[i] = rate
	}
	return rates
}
