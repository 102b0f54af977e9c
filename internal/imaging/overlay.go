package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// Overlay colors and sizes.
const (
	AnchorAColor = "#ff6b6b"
	AnchorBColor = "#2b7cff"
	CropColor    = "#00b894"
	TraceColor   = "#00c853"
	FilledColor  = "#ffa000"
	PeakColor    = "#d0021b"

	AnchorRadius = 6
	dashLength   = 4
)

// AnchorMark is a calibration anchor drawn as a labeled ring.
type AnchorMark struct {
	Label string
	Pixel calibration.Point
	Color string
}

// OverlaySpec lists what to draw on top of the source image. Every
// coordinate is in source image pixels relative to the image origin.
type OverlaySpec struct {
	// Crop is drawn as a dashed rectangle when non-nil.
	Crop *trace.Rect

	// Trace samples are relative to TraceOrigin (the crop's top-left).
	Trace       []trace.Sample
	TraceOrigin image.Point

	Anchors []AnchorMark

	// Peaks are indices into Trace.
	Peaks []int

	// Empty colors use the package defaults.
	CropColor  string
	TraceColor string
	PeakColor  string
}

// OverlayResult is the annotated image.
type OverlayResult struct {
	PNGResult
	Anchors int `json:"anchors"`
	Samples int `json:"samples"`
	Peaks   int `json:"peaks"`
}

// AnchorMarks builds ring marks for the anchors present in pair, A in red and B in blue.
func AnchorMarks(pair calibration.Pair) []AnchorMark {
	var marks []AnchorMark
	if pair.A != nil {
		marks = append(marks, AnchorMark{Label: "A", Pixel: pair.A.Pixel, Color: AnchorAColor})
	}
	if pair.B != nil {
		marks = append(marks, AnchorMark{Label: "B", Pixel: pair.B.Pixel, Color: AnchorBColor})
	}
	return marks
}

// Overlay draws spec on a copy of img and returns it as a PNG.
//
// Trace samples that came from interpolation are drawn in FilledColor so
// the user can see where the curve was not found. Peak indices outside the
// trace are ignored.
func Overlay(img image.Image, spec OverlaySpec) (*OverlayResult, error) {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	c := canvas{img: result, origin: bounds.Min}

	if spec.Crop != nil && !spec.Crop.Empty() {
		c.dashedRect(*spec.Crop, parseColor(spec.CropColor, CropColor))
	}

	traceColor := parseColor(spec.TraceColor, TraceColor)
	filledColor := parseColor("", FilledColor)
	for _, s := range spec.Trace {
		col := traceColor
		if s.Filled {
			col = filledColor
		}
		c.set(spec.TraceOrigin.X+s.Column, spec.TraceOrigin.Y+s.Row, col)
	}

	peakColor := parseColor(spec.PeakColor, PeakColor)
	peaks := 0
	for _, idx := range spec.Peaks {
		if idx < 0 || idx >= len(spec.Trace) {
			continue
		}
		s := spec.Trace[idx]
		c.cross(spec.TraceOrigin.X+s.Column, spec.TraceOrigin.Y+s.Row, 4, peakColor)
		peaks++
	}

	labelBg := color.RGBA{0, 0, 0, 180}
	for _, a := range spec.Anchors {
		x := int(math.Round(a.Pixel.X))
		y := int(math.Round(a.Pixel.Y))
		col := parseColor(a.Color, AnchorAColor)
		c.ring(x, y, AnchorRadius, col)
		c.set(x, y, col)
		drawLabel(result, bounds.Min.X+x+AnchorRadius+2, bounds.Min.Y+y-AnchorRadius-2, a.Label, color.RGBA{255, 255, 255, 255}, labelBg)
	}

	encoded, err := encodePNG(result)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		PNGResult: *encoded,
		Anchors:   len(spec.Anchors),
		Samples:   len(spec.Trace),
		Peaks:     peaks,
	}, nil
}

// parseColor parses hex, falling back to def when hex is empty or invalid.
func parseColor(hex, def string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(def)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// canvas draws in coordinates relative to origin and clips to the image.
type canvas struct {
	img    *image.RGBA
	origin image.Point
}

func (c canvas) set(x, y int, col color.RGBA) {
	p := image.Pt(c.origin.X+x, c.origin.Y+y)
	if p.In(c.img.Bounds()) {
		c.img.SetRGBA(p.X, p.Y, col)
	}
}

func (c canvas) dashedRect(r trace.Rect, col color.RGBA) {
	x1, y1 := r.X+r.W-1, r.Y+r.H-1
	for i := 0; i < r.W; i++ {
		if (i/dashLength)%2 == 0 {
			c.set(r.X+i, r.Y, col)
			c.set(r.X+i, y1, col)
		}
	}
	for i := 0; i < r.H; i++ {
		if (i/dashLength)%2 == 0 {
			c.set(r.X, r.Y+i, col)
			c.set(x1, r.Y+i, col)
		}
	}
}

func (c canvas) ring(cx, cy, radius int, col color.RGBA) {
	for dy := -radius - 1; dy <= radius+1; dy++ {
		for dx := -radius - 1; dx <= radius+1; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			if math.Abs(d-float64(radius)) < 0.75 {
				c.set(cx+dx, cy+dy, col)
			}
		}
	}
}

func (c canvas) cross(cx, cy, arm int, col color.RGBA) {
	for i := -arm; i <= arm; i++ {
		c.set(cx+i, cy+i, col)
		c.set(cx+i, cy-i, col)
	}
}

// drawLabel draws text in the 7x13 basic font on a filled background whose
// top-left corner is (x, y). Drawing is clipped to the image.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}

	box := image.Rect(x-1, y-1, x+d.MeasureString(text).Ceil()+1, y+face.Height)
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)
	d.DrawString(text)
}
