package trace

import (
	"image"
	"testing"
)

func fillBlock(x1, y1, x2, y2 int) []image.Point {
	var pts []image.Point
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			pts = append(pts, image.Point{X: x, Y: y})
		}
	}
	return pts
}

func TestAutoCrop(t *testing.T) {
	img := createChartImage(100, 80, fillBlock(20, 10, 60, 30))

	got := AutoCrop(img, DefaultAutoCropOptions())
	want := Rect{X: 14, Y: 4, W: 52, H: 32}
	if got != want {
		t.Errorf("AutoCrop = %v, want %v", got, want)
	}
}

func TestAutoCrop_ClampsToImage(t *testing.T) {
	img := createChartImage(40, 30, fillBlock(2, 1, 38, 28))

	got := AutoCrop(img, DefaultAutoCropOptions())
	want := Rect{X: 0, Y: 0, W: 39, H: 29}
	if got != want {
		t.Errorf("AutoCrop = %v, want %v", got, want)
	}
}

func TestAutoCrop_BlankImage(t *testing.T) {
	img := createChartImage(64, 48, nil)

	got := AutoCrop(img, DefaultAutoCropOptions())
	want := Rect{X: 0, Y: 0, W: 64, H: 48}
	if got != want {
		t.Errorf("AutoCrop = %v, want full image %v", got, want)
	}
}

func TestAutoCrop_SinglePixelFallsBack(t *testing.T) {
	img := createChartImage(30, 30, []image.Point{{X: 10, Y: 10}})

	got := AutoCrop(img, DefaultAutoCropOptions())
	if got != (Rect{X: 0, Y: 0, W: 30, H: 30}) {
		t.Errorf("AutoCrop = %v, want full image", got)
	}
}

func TestAutoCrop_ZeroPadding(t *testing.T) {
	img := createChartImage(50, 50, fillBlock(10, 20, 30, 25))

	got := AutoCrop(img, AutoCropOptions{Threshold: DefaultBackgroundLuma, Padding: 0})
	want := Rect{X: 10, Y: 20, W: 20, H: 5}
	if got != want {
		t.Errorf("AutoCrop = %v, want %v", got, want)
	}
}

func TestAutoCrop_LightGrayIsBackground(t *testing.T) {
	img := createChartImage(40, 40, nil)
	for y := 5; y < 35; y++ {
		for x := 5; x < 35; x++ {
			img.Pix[img.PixOffset(x, y)+0] = 250
			img.Pix[img.PixOffset(x, y)+1] = 250
			img.Pix[img.PixOffset(x, y)+2] = 250
		}
	}

	got := AutoCrop(img, DefaultAutoCropOptions())
	if got != (Rect{X: 0, Y: 0, W: 40, H: 40}) {
		t.Errorf("AutoCrop = %v, want full image", got)
	}
}
