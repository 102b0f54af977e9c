// Package pipeline runs the digitizing stages in order: raster region, pixel
// trace, physical curve, smoothed curve, peak list.
//
// Each run takes an explicit Input and returns a fresh Result. Nothing is
// cached or shared between runs.
package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// ErrNoData is returned when a series run has no valid {x,y} pairs.
var ErrNoData = errors.New("no valid x,y pairs")

// ErrNotAscending is returned when series X values do not strictly increase.
var ErrNotAscending = errors.New("x values are not strictly ascending")

// Input is everything one raster run needs.
type Input struct {
	// Region is the cropped raster.
	Region trace.Region

	// Crop locates Region in the source image; calibration anchors use
	// source image coordinates.
	Crop trace.Rect

	Calibration calibration.Pair
	Extract     trace.Options

	// Window is the smoothing window; it is coerced with signal.NormalizeWindow.
	Window int

	Peaks signal.PeakParams

	// Strict rejects degenerate calibration axes instead of warning.
	Strict bool
}

// Result holds every stage's output. Smoothed is aligned index-for-index
// with Raw, and peak indices refer to Smoothed.
type Result struct {
	Crop       trace.Rect                  `json:"crop"`
	Trace      []trace.Sample              `json:"trace"`
	Raw        []calibration.PhysicalPoint `json:"raw"`
	Smoothed   []float64                   `json:"smoothed"`
	Peaks      []signal.Peak               `json:"peaks"`
	Window     int                         `json:"window"`
	Calibrated bool                        `json:"calibrated"`
	Warnings   []calibration.Warning       `json:"warnings,omitempty"`
}

// Run digitizes in.Region.
//
// A zero-area crop or region is not an error: every output slice is empty and
// the caller treats the result as "no data". Calibration is still checked.
//
// # Errors
//
//   - calibration.ErrDegenerateAxis when in.Strict is set and the anchors
//     share a pixel coordinate on an axis
func Run(in Input) (*Result, error) {
	samples := []trace.Sample{}
	if !in.Crop.Empty() && in.Region.Width() > 0 && in.Region.Height() > 0 {
		samples = trace.Extract(in.Region, in.Extract)
	}

	mapped, err := calibration.Map(samples, in.Calibration, in.Crop, calibration.Options{Strict: in.Strict})
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}

	x, y := split(mapped.Points)
	window := signal.NormalizeWindow(in.Window)
	smoothed := signal.Smooth(y, window)

	peaks, err := signal.FindPeaks(x, smoothed, in.Peaks)
	if err != nil {
		return nil, fmt.Errorf("peak detection failed: %w", err)
	}

	return &Result{
		Crop:       in.Crop,
		Trace:      samples,
		Raw:        mapped.Points,
		Smoothed:   smoothed,
		Peaks:      peaks,
		Window:     window,
		Calibrated: mapped.Calibrated,
		Warnings:   mapped.Warnings,
	}, nil
}

// SeriesResult is the output of RunSeries.
type SeriesResult struct {
	Raw      []calibration.PhysicalPoint `json:"raw"`
	Smoothed []float64                   `json:"smoothed"`
	Peaks    []signal.Peak               `json:"peaks"`
	Window   int                         `json:"window"`
}

// RunSeries smooths and searches an already-physical curve, such as one
// imported from CSV. The input is not modified.
//
// # Errors
//
//   - ErrNoData if points is empty or contains a non-finite coordinate
//   - ErrNotAscending if an X value does not exceed the one before it
func RunSeries(points []calibration.PhysicalPoint, window int, params signal.PeakParams) (*SeriesResult, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			return nil, fmt.Errorf("%w: point %d is (%v, %v)", ErrNoData, i, p.X, p.Y)
		}
		if i > 0 && p.X <= points[i-1].X {
			return nil, fmt.Errorf("%w: point %d x=%v follows x=%v", ErrNotAscending, i, p.X, points[i-1].X)
		}
	}

	raw := make([]calibration.PhysicalPoint, len(points))
	copy(raw, points)

	x, y := split(raw)
	window = signal.NormalizeWindow(window)
	smoothed := signal.Smooth(y, window)

	peaks, err := signal.FindPeaks(x, smoothed, params)
	if err != nil {
		return nil, fmt.Errorf("peak detection failed: %w", err)
	}

	return &SeriesResult{Raw: raw, Smoothed: smoothed, Peaks: peaks, Window: window}, nil
}

func split(points []calibration.PhysicalPoint) ([]float64, []float64) {
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.X
		y[i] = p.Y
	}
	return x, y
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
