package trace

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createChartImage returns a white RGBA image with black pixels at the given points.
func createChartImage(width, height int, dark []image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for _, p := range dark {
		img.Set(p.X, p.Y, color.RGBA{0, 0, 0, 255})
	}
	return img
}

func TestNewBuffer(t *testing.T) {
	buf := NewBuffer(3, 2)
	if buf.Width() != 3 || buf.Height() != 2 {
		t.Fatalf("dimensions: got %dx%d, want 3x2", buf.Width(), buf.Height())
	}
	r, g, b := buf.RGBAt(2, 1)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("new buffer pixel = (%d,%d,%d), want white", r, g, b)
	}

	buf.Set(2, 1, 1, 2, 3)
	r, g, b = buf.RGBAt(2, 1)
	if r != 1 || g != 2 || b != 3 {
		t.Errorf("after Set = (%d,%d,%d), want (1,2,3)", r, g, b)
	}

	neg := NewBuffer(-1, -5)
	if neg.Width() != 0 || neg.Height() != 0 {
		t.Errorf("negative size: got %dx%d, want 0x0", neg.Width(), neg.Height())
	}
}

func TestFromImage(t *testing.T) {
	img := createChartImage(50, 40, []image.Point{{X: 12, Y: 15}})

	buf, err := FromImage(img, Rect{X: 10, Y: 10, W: 20, H: 10})
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width() != 20 || buf.Height() != 10 {
		t.Fatalf("dimensions: got %dx%d, want 20x10", buf.Width(), buf.Height())
	}

	r, g, b := buf.RGBAt(2, 5)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("pixel (2,5) = (%d,%d,%d), want black", r, g, b)
	}
	r, g, b = buf.RGBAt(0, 0)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("pixel (0,0) = (%d,%d,%d), want white", r, g, b)
	}
}

func TestFromImage_NonZeroOrigin(t *testing.T) {
	base := createChartImage(30, 30, []image.Point{{X: 15, Y: 12}})
	sub := base.SubImage(image.Rect(10, 10, 30, 30))

	buf, err := FromImage(sub, Rect{X: 0, Y: 0, W: 20, H: 20})
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	r, _, _ := buf.RGBAt(5, 2)
	if r != 0 {
		t.Errorf("pixel (5,2) red = %d, want 0", r)
	}
}

func TestFromImage_OutOfBounds(t *testing.T) {
	img := createChartImage(20, 20, nil)

	tests := []struct {
		name string
		rect Rect
	}{
		{"negative x", Rect{X: -1, Y: 0, W: 5, H: 5}},
		{"negative y", Rect{X: 0, Y: -1, W: 5, H: 5}},
		{"too wide", Rect{X: 10, Y: 0, W: 11, H: 5}},
		{"too tall", Rect{X: 0, Y: 10, W: 5, H: 11}},
		{"negative width", Rect{X: 0, Y: 0, W: -3, H: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromImage(img, tt.rect)
			if !errors.Is(err, ErrRegionOutOfBounds) {
				t.Errorf("err = %v, want ErrRegionOutOfBounds", err)
			}
		})
	}
}

func TestFromImage_ZeroArea(t *testing.T) {
	img := createChartImage(20, 20, nil)

	buf, err := FromImage(img, Rect{X: 5, Y: 5, W: 0, H: 7})
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width() != 0 || buf.Height() != 7 {
		t.Errorf("dimensions: got %dx%d, want 0x7", buf.Width(), buf.Height())
	}
	if samples := Extract(buf, Options{}); len(samples) != 0 {
		t.Errorf("zero-width region produced %d samples", len(samples))
	}
}

func TestRect(t *testing.T) {
	if !(Rect{W: 0, H: 5}).Empty() {
		t.Error("zero width should be empty")
	}
	if (Rect{W: 1, H: 1}).Empty() {
		t.Error("1x1 should not be empty")
	}
	if got := (Rect{X: 1, Y: 2, W: 3, H: 4}).String(); got != "x=1, y=2, w=3, h=4" {
		t.Errorf("String() = %q", got)
	}
}
