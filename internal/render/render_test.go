package render

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
)

func sampleChart() Chart {
	raw := []calibration.PhysicalPoint{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 3, Y: 3}, {X: 4, Y: 0}}
	return Chart{
		Title:    "Spectrum",
		XLabel:   "wavelength",
		YLabel:   "counts",
		Raw:      raw,
		Smoothed: []float64{0.5, 0.33, 1.33, 1, 1.5},
		Peaks:    []signal.Peak{{Index: 2, X: 2, Y: 1.33}},
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, sampleChart()); err != nil {
		t.Fatalf("HTML failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Spectrum", `"raw"`, `"smoothed"`, `"peaks"`, "dashed"} {
		if !strings.Contains(out, want) {
			t.Errorf("html output missing %s", want)
		}
	}
}

func TestHTML_RawOnly(t *testing.T) {
	c := sampleChart()
	c.Smoothed = nil
	c.Peaks = nil

	var buf bytes.Buffer
	if err := HTML(&buf, c); err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if strings.Contains(buf.String(), `"smoothed"`) {
		t.Error("smoothed series rendered without data")
	}
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, sampleChart(), 640, 480); err != nil {
		t.Fatalf("PNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	b := img.Bounds()
	if abs(b.Dx()-640) > 1 || abs(b.Dy()-480) > 1 {
		t.Errorf("size = %dx%d, want about 640x480", b.Dx(), b.Dy())
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name  string
		chart Chart
		want  error
	}{
		{"empty", Chart{}, ErrNoPoints},
		{"misaligned", Chart{Raw: sampleChart().Raw, Smoothed: []float64{1}}, ErrLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := HTML(&buf, tt.chart); !errors.Is(err, tt.want) {
				t.Errorf("HTML err = %v, want %v", err, tt.want)
			}
			if err := PNG(&buf, tt.chart, 100, 100); !errors.Is(err, tt.want) {
				t.Errorf("PNG err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPNG_InvalidSize(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, sampleChart(), 0, 100); err == nil {
		t.Error("expected error for zero width")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestRender_SkipsNonFinite(t *testing.T) {
	c := sampleChart()
	c.Raw[1].Y = math.NaN()
	c.Smoothed[2] = math.Inf(1)

	var buf bytes.Buffer
	if err := HTML(&buf, c); err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	buf.Reset()
	if err := PNG(&buf, c, 320, 240); err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
}
