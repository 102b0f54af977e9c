package detection

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// ErrNoAxes is returned by Axes.Area when either axis is missing.
var ErrNoAxes = errors.New("chart axes not found")

const (
	DefaultInkLuma     = 128.0
	DefaultMinFraction = 0.5
	DefaultMaxGap      = 2
	DefaultInset       = 2
)

// Point is a pixel position in image coordinates.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Segment is an axis-aligned band of ink. Start and End are inclusive and lie
// on the band's center row (horizontal) or column (vertical).
type Segment struct {
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
	Length    int     `json:"length"`
	Thickness int     `json:"thickness"`
	Color     string  `json:"color"`
	Coverage  float64 `json:"coverage"`
}

// Axes is the result of FindAxes. Any field may be nil.
type Axes struct {
	// X is the horizontal axis: the lowest qualifying row band.
	X *Segment `json:"x_axis,omitempty"`

	// Y is the vertical axis: the leftmost qualifying column band.
	Y *Segment `json:"y_axis,omitempty"`

	// Origin is where the axis center lines cross.
	Origin *Point `json:"origin,omitempty"`

	// PlotArea is the region right of Y and above X, kept Inset pixels
	// clear of both bands. It is nil unless both axes were found.
	PlotArea *trace.Rect `json:"plot_area,omitempty"`
}

// Area returns PlotArea or an error wrapping ErrNoAxes.
func (a *Axes) Area() (trace.Rect, error) {
	if a == nil || a.PlotArea == nil {
		var found []string
		if a != nil && a.X != nil {
			found = append(found, "x")
		}
		if a != nil && a.Y != nil {
			found = append(found, "y")
		}
		return trace.Rect{}, fmt.Errorf("%w (found: %v)", ErrNoAxes, found)
	}
	return *a.PlotArea, nil
}

// AxisOptions tunes FindAxes.
type AxisOptions struct {
	// InkLuma is the luma below which a pixel counts as ink.
	InkLuma float64

	// MinFraction is the shortest run that can be an axis, as a fraction of
	// the image width (X) or height (Y).
	MinFraction float64

	// MaxGap is the longest break in a run that still joins it, so tick
	// marks and anti-aliasing do not split an axis.
	MaxGap int

	// Inset is the clearance kept between PlotArea and the axis bands.
	Inset int
}

// DefaultAxisOptions returns ink below luma 128, runs of half the image, gaps
// up to 2 pixels and an inset of 2.
func DefaultAxisOptions() AxisOptions {
	return AxisOptions{
		InkLuma:     DefaultInkLuma,
		MinFraction: DefaultMinFraction,
		MaxGap:      DefaultMaxGap,
		Inset:       DefaultInset,
	}
}

// FindAxes locates the horizontal and vertical axis lines of a chart.
//
// Parameters:
//   - img: The chart image.
//   - opts: Ink threshold, minimum run length, gap tolerance and inset.
//
// Returns:
//   - *Axes: Whatever was found. Never nil when err is nil.
//   - error: Only if the image cannot be read.
//
// # Algorithm
//
//  1. Threshold every pixel to an ink mask.
//  2. For each row and column, find the longest run of ink allowing gaps of
//     up to MaxGap pixels. A line qualifies when its run reaches MinFraction
//     of the image dimension.
//  3. The X axis is the lowest qualifying row, grown upward through adjacent
//     qualifying rows to measure its thickness. The Y axis is the leftmost
//     qualifying column, grown rightward.
//  4. With both axes, the plot area spans from just right of the Y band to
//     the end of the X run, and from the top of the Y run to just above the
//     X band.
func FindAxes(img image.Image, opts AxisOptions) (*Axes, error) {
	b := img.Bounds()
	buf, err := trace.FromImage(img, trace.Rect{W: b.Dx(), H: b.Dy()})
	if err != nil {
		return nil, err
	}
	w, h := buf.Width(), buf.Height()
	if w == 0 || h == 0 {
		return &Axes{}, nil
	}

	ink := make([]bool, w*h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				ink[y*w+x] = trace.Luma(buf.RGBAt(x, y)) < opts.InkLuma
			}
		}
	})

	rowRuns := make([]run, h)
	for y := range rowRuns {
		rowRuns[y] = longestRun(w, opts.MaxGap, func(x int) bool { return ink[y*w+x] })
	}
	colRuns := make([]run, w)
	for x := range colRuns {
		colRuns[x] = longestRun(h, opts.MaxGap, func(y int) bool { return ink[y*w+x] })
	}

	axes := &Axes{}
	minRow := minRunLength(w, opts.MinFraction)
	minCol := minRunLength(h, opts.MinFraction)

	// X axis: scan upward from the bottom.
	for y := h - 1; y >= 0; y-- {
		if rowRuns[y].length() < minRow {
			continue
		}
		t := 1
		for y-t >= 0 && rowRuns[y-t].length() >= minRow {
			t++
		}
		center := y - (t-1)/2
		r := rowRuns[y]
		axes.X = &Segment{
			Start:     Point{X: r.start, Y: center},
			End:       Point{X: r.end, Y: center},
			Length:    r.length(),
			Thickness: t,
			Color:     colorAt(buf, (r.start+r.end)/2, y),
			Coverage:  r.coverage(),
		}
		break
	}

	// Y axis: scan rightward from the left.
	for x := 0; x < w; x++ {
		if colRuns[x].length() < minCol {
			continue
		}
		t := 1
		for x+t < w && colRuns[x+t].length() >= minCol {
			t++
		}
		center := x + (t-1)/2
		r := colRuns[x]
		axes.Y = &Segment{
			Start:     Point{X: center, Y: r.start},
			End:       Point{X: center, Y: r.end},
			Length:    r.length(),
			Thickness: t,
			Color:     colorAt(buf, x, (r.start+r.end)/2),
			Coverage:  r.coverage(),
		}
		break
	}

	if axes.X == nil || axes.Y == nil {
		return axes, nil
	}

	axes.Origin = &Point{X: axes.Y.Start.X, Y: axes.X.Start.Y}

	inset := max(0, opts.Inset)
	yInner := axes.Y.Start.X + axes.Y.Thickness - 1 - (axes.Y.Thickness-1)/2
	xInner := axes.X.Start.Y - (axes.X.Thickness - 1 - (axes.X.Thickness-1)/2)
	left := yInner + 1 + inset
	right := axes.X.End.X
	top := axes.Y.Start.Y
	bottom := xInner - 1 - inset
	if right >= left && bottom >= top {
		axes.PlotArea = &trace.Rect{X: left, Y: top, W: right - left + 1, H: bottom - top + 1}
	}
	return axes, nil
}

// run is an inclusive span with the count of ink pixels inside it.
type run struct {
	start, end int
	inked      int
}

func (r run) length() int {
	if r.start < 0 {
		return 0
	}
	return r.end - r.start + 1
}

func (r run) coverage() float64 {
	if r.length() == 0 {
		return 0
	}
	return math.Round(float64(r.inked)/float64(r.length())*1000) / 1000
}

// longestRun finds the longest span of ink in n positions where breaks of at
// most maxGap pixels are bridged. Ties keep the first span. start is -1 when
// there is no ink.
func longestRun(n, maxGap int, isInk func(i int) bool) run {
	best := run{start: -1, end: -1}
	cur := run{start: -1, end: -1}

	for i := 0; i < n; i++ {
		if !isInk(i) {
			continue
		}
		if cur.start >= 0 && i-cur.end-1 <= maxGap {
			cur.end = i
			cur.inked++
		} else {
			cur = run{start: i, end: i, inked: 1}
		}
		if cur.length() > best.length() {
			best = cur
		}
	}
	return best
}

func minRunLength(dim int, fraction float64) int {
	if fraction <= 0 || math.IsNaN(fraction) {
		fraction = DefaultMinFraction
	}
	return max(2, int(math.Ceil(fraction*float64(dim))))
}

func colorAt(buf *trace.Buffer, x, y int) string {
	r, g, b := buf.RGBAt(x, y)
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}
