// Package signal smooths physical Y-series and picks significant peaks.
//
// Both operations are pure: inputs are never modified and every call
// allocates its own output.
package signal

import "gonum.org/v1/gonum/floats"

// DefaultWindow is used when a caller supplies a window below 1.
const DefaultWindow = 11

// NormalizeWindow coerces a smoothing window to a positive odd size.
// Values below 1 become DefaultWindow; even values are incremented.
func NormalizeWindow(window int) int {
	if window < 1 {
		return DefaultWindow
	}
	if window%2 == 0 {
		window++
	}
	return window
}

// Smooth applies a centered moving average with boundary truncation.
//
// For index i the mean is taken over [i-half, i+half] intersected with the
// valid range, divided by the number of terms actually included. The window
// is coerced with NormalizeWindow, so 4 behaves like 5. A window of 1 returns
// an exact copy.
func Smooth(y []float64, window int) []float64 {
	window = NormalizeWindow(window)
	out := make([]float64, len(y))
	if window == 1 {
		copy(out, y)
		return out
	}

	half := window / 2
	n := len(y)
	for i := range out {
		lo := max(0, i-half)
		hi := min(n, i+half+1)
		out[i] = floats.Sum(y[lo:hi]) / float64(hi-lo)
	}
	return out
}
