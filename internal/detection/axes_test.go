package detection

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createChartImage draws 2px axes meeting at (20..21, 179..180), outward
// tick marks, and a gentle single-pixel curve inside the plot.
func createChartImage() *image.RGBA {
	img := createTestImage(300, 200, color.White)

	for y := 10; y <= 180; y++ {
		img.Set(20, y, color.Black)
		img.Set(21, y, color.Black)
	}
	for x := 20; x <= 290; x++ {
		img.Set(x, 179, color.Black)
		img.Set(x, 180, color.Black)
	}
	for x := 50; x <= 290; x += 50 {
		for y := 181; y <= 184; y++ {
			img.Set(x, y, color.Black)
		}
	}
	for x := 30; x <= 280; x++ {
		y := 100 + int(40*math.Sin(float64(x)/30))
		img.Set(x, y, color.RGBA{0, 0, 200, 255})
	}
	return img
}

func TestFindAxes(t *testing.T) {
	axes, err := FindAxes(createChartImage(), DefaultAxisOptions())
	if err != nil {
		t.Fatalf("FindAxes failed: %v", err)
	}

	want := &Axes{
		X: &Segment{
			Start: Point{X: 20, Y: 180}, End: Point{X: 290, Y: 180},
			Length: 271, Thickness: 2, Color: "#000000", Coverage: 1,
		},
		Y: &Segment{
			Start: Point{X: 20, Y: 10}, End: Point{X: 20, Y: 180},
			Length: 171, Thickness: 2, Color: "#000000", Coverage: 1,
		},
		Origin:   &Point{X: 20, Y: 180},
		PlotArea: &trace.Rect{X: 24, Y: 10, W: 267, H: 167},
	}
	if diff := cmp.Diff(want, axes); diff != "" {
		t.Errorf("axes mismatch (-want +got):\n%s", diff)
	}

	area, err := axes.Area()
	if err != nil {
		t.Fatalf("Area failed: %v", err)
	}
	if area != *want.PlotArea {
		t.Errorf("Area: got %v", area)
	}
}

func TestFindAxes_ZeroInset(t *testing.T) {
	opts := DefaultAxisOptions()
	opts.Inset = 0

	axes, err := FindAxes(createChartImage(), opts)
	if err != nil {
		t.Fatalf("FindAxes failed: %v", err)
	}
	want := trace.Rect{X: 22, Y: 10, W: 269, H: 169}
	if axes.PlotArea == nil || *axes.PlotArea != want {
		t.Errorf("PlotArea: got %v, want %v", axes.PlotArea, want)
	}
}

func TestFindAxes_BlankImage(t *testing.T) {
	axes, err := FindAxes(createTestImage(100, 80, color.White), DefaultAxisOptions())
	if err != nil {
		t.Fatalf("FindAxes failed: %v", err)
	}
	if axes.X != nil || axes.Y != nil || axes.PlotArea != nil {
		t.Errorf("blank image should have no axes: %+v", axes)
	}
	if _, err := axes.Area(); !errors.Is(err, ErrNoAxes) {
		t.Errorf("Area err = %v, want ErrNoAxes", err)
	}
}

func TestFindAxes_HorizontalOnly(t *testing.T) {
	img := createTestImage(100, 80, color.White)
	for x := 5; x < 95; x++ {
		img.Set(x, 60, color.Black)
	}

	axes, err := FindAxes(img, DefaultAxisOptions())
	if err != nil {
		t.Fatalf("FindAxes failed: %v", err)
	}
	if axes.X == nil || axes.X.Start.Y != 60 || axes.X.Thickness != 1 {
		t.Errorf("X axis: got %+v", axes.X)
	}
	if axes.Y != nil || axes.Origin != nil || axes.PlotArea != nil {
		t.Errorf("only the X axis should be found: %+v", axes)
	}
}

func TestFindAxes_LightLinesIgnored(t *testing.T) {
	img := createTestImage(100, 80, color.White)
	for x := 0; x < 100; x++ {
		img.Set(x, 70, color.Gray{Y: 200}) // gridline, lighter than InkLuma
	}

	axes, err := FindAxes(img, DefaultAxisOptions())
	if err != nil {
		t.Fatalf("FindAxes failed: %v", err)
	}
	if axes.X != nil {
		t.Errorf("light gridline should not be an axis: %+v", axes.X)
	}
}

func TestLongestRun(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		maxGap    int
		wantStart int
		wantEnd   int
		wantInked int
	}{
		{"empty", "......", 2, -1, -1, 0},
		{"single", "..#...", 2, 2, 2, 1},
		{"solid", ".####.", 0, 1, 4, 4},
		{"gap bridged", "##..##", 2, 0, 5, 4},
		{"gap too wide", "##...###", 2, 5, 7, 3},
		{"first wins ties", "##.##", 0, 0, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longestRun(len(tt.pattern), tt.maxGap, func(i int) bool { return tt.pattern[i] == '#' })
			if got.start != tt.wantStart || got.end != tt.wantEnd || got.inked != tt.wantInked {
				t.Errorf("got %+v, want start=%d end=%d inked=%d", got, tt.wantStart, tt.wantEnd, tt.wantInked)
			}
		})
	}
}

func TestMinRunLength(t *testing.T) {
	tests := []struct {
		dim      int
		fraction float64
		want     int
	}{
		{200, 0.5, 100},
		{201, 0.5, 101},
		{3, 0.1, 2},
		{100, 0, 50},
		{100, math.NaN(), 50},
	}
	for _, tt := range tests {
		if got := minRunLength(tt.dim, tt.fraction); got != tt.want {
			t.Errorf("minRunLength(%d, %v) = %d, want %d", tt.dim, tt.fraction, got, tt.want)
		}
	}
}
