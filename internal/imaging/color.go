package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ColorSample is the color of a single pixel.
type ColorSample struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Hex  string   `json:"hex"`
	RGB  RGBColor `json:"rgb"`
	Luma float64  `json:"luma"`
}

// SampleColor reads the pixel at (x, y), relative to the image origin.
// Alpha is ignored the same way trace extraction ignores it.
func SampleColor(img image.Image, x, y int) (*ColorSample, error) {
	bounds := img.Bounds()
	if x < 0 || y < 0 || x >= bounds.Dx() || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	buf, err := trace.FromImage(img, trace.Rect{X: x, Y: y, W: 1, H: 1})
	if err != nil {
		return nil, err
	}
	r, g, b := buf.RGBAt(0, 0)

	return &ColorSample{
		X:    x,
		Y:    y,
		Hex:  hexOf(r, g, b),
		RGB:  RGBColor{R: r, G: g, B: b},
		Luma: trace.Luma(r, g, b),
	}, nil
}

// InkColor is a quantized foreground color and its share of foreground pixels.
type InkColor struct {
	Hex        string   `json:"hex"`
	RGB        RGBColor `json:"rgb"`
	Percentage float64  `json:"percentage"`
}

// InkColors returns up to count of the most common non-background colors
// inside rect, most common first. Pixels with luma at or above background
// are skipped. Components are quantized to multiples of 16 so antialiased
// edges group with their line.
//
// A chart whose trace is not among the darkest inks will digitize poorly;
// the list lets the caller spot that before extracting.
func InkColors(img image.Image, rect trace.Rect, count int, background float64) ([]InkColor, error) {
	buf, err := trace.FromImage(img, rect)
	if err != nil {
		return nil, err
	}

	counts := make(map[RGBColor]int)
	total := 0
	for row := 0; row < buf.Height(); row++ {
		for col := 0; col < buf.Width(); col++ {
			r, g, b := buf.RGBAt(col, row)
			if trace.Luma(r, g, b) >= background {
				continue
			}
			counts[RGBColor{R: r / 16 * 16, G: g / 16 * 16, B: b / 16 * 16}]++
			total++
		}
	}

	colors := make([]InkColor, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, InkColor{
			Hex:        hexOf(c.R, c.G, c.B),
			RGB:        c,
			Percentage: float64(n) / float64(total) * 100,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors, nil
}

func hexOf(r, g, b uint8) string {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}
