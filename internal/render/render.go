// Package render draws a digitized curve as an interactive HTML page or a
// static PNG.
//
// Both renderers show the same three series: "raw" as a solid line,
// "smoothed" as a dashed line and "peaks" as markers.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
)

// ErrNoPoints is returned when a chart has no raw points to draw.
var ErrNoPoints = errors.New("chart has no points")

// ErrLengthMismatch is returned when Smoothed is not aligned with Raw.
var ErrLengthMismatch = errors.New("smoothed series length differs from raw")

// Series colors.
const (
	RawColor      = "#4a90d9"
	SmoothedColor = "#f5a623"
	PeakColor     = "#d0021b"
)

// Chart is the data drawn by HTML and PNG.
type Chart struct {
	Title    string
	XLabel   string
	YLabel   string
	Raw      []calibration.PhysicalPoint
	Smoothed []float64
	Peaks    []signal.Peak
}

func (c Chart) validate() error {
	if len(c.Raw) == 0 {
		return ErrNoPoints
	}
	if len(c.Smoothed) != 0 && len(c.Smoothed) != len(c.Raw) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(c.Smoothed), len(c.Raw))
	}
	return nil
}

func (c Chart) title() string {
	if c.Title == "" {
		return "Digitized curve"
	}
	return c.Title
}

// HTML writes a standalone go-echarts page for c.
func HTML(w io.Writer, c Chart) error {
	if err := c.validate(); err != nil {
		return err
	}

	raw := make([]opts.LineData, 0, len(c.Raw))
	for _, p := range c.Raw {
		if finite(p.X, p.Y) {
			raw = append(raw, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}
	}
	if len(raw) == 0 {
		return ErrNoPoints
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.title(), Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: c.title(), Subtitle: fmt.Sprintf("points=%d peaks=%d", len(c.Raw), len(c.Peaks))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: c.XLabel, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: c.YLabel, NameLocation: "middle", NameGap: 35}),
	)

	line.AddSeries("raw", raw,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: RawColor, Width: 1}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: RawColor}),
	)

	if len(c.Smoothed) > 0 {
		smoothed := make([]opts.LineData, 0, len(c.Smoothed))
		for i, y := range c.Smoothed {
			if finite(c.Raw[i].X, y) {
				smoothed = append(smoothed, opts.LineData{Value: []interface{}{c.Raw[i].X, y}})
			}
		}
		line.AddSeries("smoothed", smoothed,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: SmoothedColor, Width: 2, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: SmoothedColor}),
		)
	}

	if len(c.Peaks) > 0 {
		peaks := make([]opts.ScatterData, 0, len(c.Peaks))
		for _, p := range c.Peaks {
			if finite(p.X, p.Y) {
				peaks = append(peaks, opts.ScatterData{Value: []interface{}{p.X, p.Y}, Name: fmt.Sprintf("peak %d", p.Index)})
			}
		}
		scatter := charts.NewScatter()
		scatter.AddSeries("peaks", peaks,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: PeakColor}),
		)
		line.Overlap(scatter)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render html chart: %w", err)
	}
	return nil
}

// PNG writes c as a width x height pixel PNG using gonum/plot.
func PNG(w io.Writer, c Chart, width, height int) error {
	if err := c.validate(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}

	p := plot.New()
	p.Title.Text = c.title()
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	rawPts := make(plotter.XYs, 0, len(c.Raw))
	for _, pt := range c.Raw {
		rawPts = appendFinite(rawPts, pt.X, pt.Y)
	}
	if len(rawPts) == 0 {
		return ErrNoPoints
	}
	rawLine, err := plotter.NewLine(rawPts)
	if err != nil {
		return fmt.Errorf("raw series: %w", err)
	}
	rawLine.Width = vg.Points(1)
	rawLine.Color = mustColor(RawColor)
	p.Add(rawLine)
	p.Legend.Add("raw", rawLine)

	if len(c.Smoothed) > 0 {
		smPts := make(plotter.XYs, 0, len(c.Smoothed))
		for i, y := range c.Smoothed {
			smPts = appendFinite(smPts, c.Raw[i].X, y)
		}
		smLine, err := plotter.NewLine(smPts)
		if err != nil {
			return fmt.Errorf("smoothed series: %w", err)
		}
		smLine.Width = vg.Points(1.5)
		smLine.Color = mustColor(SmoothedColor)
		smLine.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(smLine)
		p.Legend.Add("smoothed", smLine)
	}

	if len(c.Peaks) > 0 {
		pkPts := make(plotter.XYs, 0, len(c.Peaks))
		for _, pk := range c.Peaks {
			pkPts = appendFinite(pkPts, pk.X, pk.Y)
		}
		sc, err := plotter.NewScatter(pkPts)
		if err != nil {
			return fmt.Errorf("peak series: %w", err)
		}
		sc.GlyphStyle.Color = mustColor(PeakColor)
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("peaks", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	// vgimg renders at 96 dpi; convert pixels to points so the output
	// has the requested pixel size.
	wt, err := p.WriterTo(pixelsToLength(width), pixelsToLength(height), "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png chart: %w", err)
	}
	return nil
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}

// appendFinite drops points that neither renderer can encode.
func appendFinite(xys plotter.XYs, x, y float64) plotter.XYs {
	if !finite(x, y) {
		return xys
	}
	return append(xys, plotter.XY{X: x, Y: y})
}

func pixelsToLength(px int) vg.Length {
	return vg.Length(float64(px) * float64(vg.Inch) / 96)
}

// mustColor parses one of the package's hex constants.
func mustColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Sprintf("render: bad color %q: %v", hex, err))
	}
	return c
}
