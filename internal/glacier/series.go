package glacier

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LengthWindow is the rolling-minimum window applied to terminus length: 36 monthly steps (3 years)
const LengthWindow = 12 * 3

// RollingMin returns the trailing rolling minimum of values over window steps.
// Positions where the window is not yet full (i < window-1) are NaN, and so is
// any window holding a NaN: a gap in the series is never skipped over.
func RollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if window <= 0 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = nanMin(values[i-window+1 : i+1])
	}
	return out
}

// nanMin is floats.Min, except that any NaN in s makes the result NaN
func nanMin(s []float64) float64 {
	if floats.HasNaN(s) {
		return math.NaN()
	}
	return floats.Min(s)
}

// SmoothTerminusLength filters a raw terminus-length series: a trailing 3-year rolling
// minimum, with the first 36 steps backfilled from the first full window (index 35).
// A series shorter than one window gets its overall minimum everywhere. NaN
// gaps in the raw series propagate to every window that covers them.
func SmoothTerminusLength(length []float64) []float64 {
	n := len(length)
	if n == 0 {
		return []float64{}
	}

	if n < LengthWindow {
		out := make([]float64, n)
		floats.AddConst(nanMin(length), out)
		return out
	}

	out := RollingMin(length, LengthWindow)
	first := out[LengthWindow-1]
	for i := 0; i < LengthWindow-1; i++ {
		out[i] = first
	}
	return out
}

// VolumeDelta returns the step-to-step change of a volume series. The first
// element is zero: there is no prior step to difference against.
func VolumeDelta(volume []float64) []float64 {
	n := len(volume)
	delta := make([]float64, n)
	if n < 2 {
		return delta
	}
	floats.SubTo(delta[1:], volume[1:], volume[:n-1])
	return delta
}
