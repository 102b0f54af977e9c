package calibration

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// ErrDegenerateAxis is returned in strict mode when both anchors share a pixel coordinate on an axis.
var ErrDegenerateAxis = errors.New("degenerate calibration axis")

// Point is a pixel location in image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Value holds the physical coordinates assigned to an anchor. Either
// component may be absent.
type Value struct {
	X option.Float `json:"x"`
	Y option.Float `json:"y"`
}

// Complete reports whether both components are present.
func (v Value) Complete() bool {
	return v.X.IsSet() && v.Y.IsSet()
}

// Anchor pairs a pixel location with its known physical value.
type Anchor struct {
	Pixel Point `json:"pixel"`
	Value Value `json:"value"`
}

// Pair is the two-anchor input to a Mapper. Either anchor may be nil.
type Pair struct {
	A *Anchor `json:"a,omitempty"`
	B *Anchor `json:"b,omitempty"`
}

// Complete reports whether the pair can drive an affine calibration.
func (p Pair) Complete() bool {
	if p.A == nil || p.B == nil {
		return false
	}
	if !p.A.Value.Complete() || !p.B.Value.Complete() {
		return false
	}
	return p.A.Pixel != p.B.Pixel
}

// PhysicalPoint is a trace sample in physical units.
type PhysicalPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Warning flags a calibration result that should not be trusted blindly.
type Warning struct {
	Axis    string `json:"axis"`
	Message string `json:"message"`
}

// Options tunes mapper construction.
type Options struct {
	// Strict turns degenerate-axis warnings into ErrDegenerateAxis.
	Strict bool
}

// axisMap is offset + (p - origin) * delta / denom.
type axisMap struct {
	origin, offset, delta, denom float64
	// unit clamps the output to [0,1].
	unit bool
}

func (a axisMap) apply(p float64) float64 {
	v := a.offset + (p-a.origin)*a.delta/a.denom
	if a.unit {
		v = math.Max(0, math.Min(1, v))
	}
	return v
}

// Mapper converts pixel coordinates to physical coordinates for one crop.
type Mapper struct {
	crop       trace.Rect
	x, y       axisMap
	calibrated bool
	warnings   []Warning
}

// NewMapper builds the pixel-to-physical maps for a crop rectangle.
//
// Parameters:
//   - pair: Calibration anchors in image pixel coordinates. Incomplete pairs
//     select the normalized fallback.
//   - crop: The rectangle the trace was extracted from.
//   - opts: Strict mode rejects degenerate axes.
//
// Returns:
//   - *Mapper: Ready to map samples from this crop.
//   - error: ErrDegenerateAxis in strict mode only.
func NewMapper(pair Pair, crop trace.Rect, opts Options) (*Mapper, error) {
	m := &Mapper{crop: crop}

	if !pair.Complete() {
		m.x, m.y = normalizedMaps(crop)
		return m, nil
	}

	a, b := pair.A, pair.B
	ax, _ := a.Value.X.Get()
	ay, _ := a.Value.Y.Get()
	bx, _ := b.Value.X.Get()
	by, _ := b.Value.Y.Get()

	denomX := b.Pixel.X - a.Pixel.X
	if denomX == 0 {
		if opts.Strict {
			return nil, fmt.Errorf("%w: anchors share pixel x=%g", ErrDegenerateAxis, a.Pixel.X)
		}
		denomX = 1
		m.warnings = append(m.warnings, Warning{
			Axis:    "x",
			Message: fmt.Sprintf("anchors share pixel x=%g; x scale substituted with denominator 1 and is unreliable", a.Pixel.X),
		})
	}

	denomY := b.Pixel.Y - a.Pixel.Y
	if denomY == 0 {
		if opts.Strict {
			return nil, fmt.Errorf("%w: anchors share pixel y=%g", ErrDegenerateAxis, a.Pixel.Y)
		}
		denomY = 1
		m.warnings = append(m.warnings, Warning{
			Axis:    "y",
			Message: fmt.Sprintf("anchors share pixel y=%g; y scale substituted with denominator 1 and is unreliable", a.Pixel.Y),
		})
	}

	m.x = axisMap{origin: a.Pixel.X, offset: ax, delta: bx - ax, denom: denomX}
	m.y = axisMap{origin: a.Pixel.Y, offset: ay, delta: by - ay, denom: denomY}
	m.calibrated = true
	return m, nil
}

// normalizedMaps rescales the crop to [0,1] on both axes, inverting Y.
// A one-pixel span uses a denominator of 1, mapping to 0. Outputs are
// clamped, so a zero-height crop or a pixel outside the crop stays in range.
func normalizedMaps(crop trace.Rect) (axisMap, axisMap) {
	left := float64(crop.X)
	spanX := float64(crop.W - 1)
	if spanX <= 0 {
		spanX = 1
	}

	bottom := float64(crop.Y + crop.H - 1)
	spanY := float64(crop.H - 1)
	if spanY <= 0 {
		spanY = 1
	}

	return axisMap{origin: left, delta: 1, denom: spanX, unit: true},
		axisMap{origin: bottom, delta: -1, denom: spanY, unit: true}
}

// MapX converts an image pixel X coordinate.
func (m *Mapper) MapX(px float64) float64 {
	return m.x.apply(px)
}

// MapY converts an image pixel Y coordinate.
func (m *Mapper) MapY(py float64) float64 {
	return m.y.apply(py)
}

// Calibrated reports whether the anchor maps are in use rather than the normalized fallback.
func (m *Mapper) Calibrated() bool {
	return m.calibrated
}

// Warnings returns a copy of the degenerate-axis warnings.
func (m *Mapper) Warnings() []Warning {
	out := make([]Warning, len(m.warnings))
	copy(out, m.warnings)
	return out
}

// Apply maps every sample, offsetting region coordinates by the crop origin.
// The output has the same length and order as samples.
func (m *Mapper) Apply(samples []trace.Sample) []PhysicalPoint {
	points := make([]PhysicalPoint, len(samples))
	for i, s := range samples {
		px := float64(m.crop.X + s.Column)
		py := float64(m.crop.Y + s.Row)
		points[i] = PhysicalPoint{X: m.MapX(px), Y: m.MapY(py)}
	}
	return points
}

// Result is the output of Map.
type Result struct {
	Points     []PhysicalPoint `json:"points"`
	Calibrated bool            `json:"calibrated"`
	Warnings   []Warning       `json:"warnings,omitempty"`
}

// Map is NewMapper followed by Apply.
func Map(samples []trace.Sample, pair Pair, crop trace.Rect, opts Options) (*Result, error) {
	m, err := NewMapper(pair, crop, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Points:     m.Apply(samples),
		Calibrated: m.Calibrated(),
		Warnings:   m.Warnings(),
	}, nil
}
