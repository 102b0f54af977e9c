package trace

import (
	"image"

	"github.com/disintegration/imaging"
)

// Auto-crop defaults on a 0-255 luma scale.
const (
	DefaultBackgroundLuma = 245.0
	DefaultCropPadding    = 6
)

// AutoCropOptions controls the background bounding-box search.
type AutoCropOptions struct {
	// Threshold is the luma below which a pixel counts as content.
	Threshold float64
	// Padding is added on every side of the content box before clamping.
	Padding int
}

// DefaultAutoCropOptions returns the standard threshold (245) and padding (6).
func DefaultAutoCropOptions() AutoCropOptions {
	return AutoCropOptions{Threshold: DefaultBackgroundLuma, Padding: DefaultCropPadding}
}

// AutoCrop finds the smallest rectangle holding non-background pixels.
//
// Every pixel with luma below opts.Threshold is content. The content box is
// grown by opts.Padding and clamped to the image. The padded right and bottom
// edges are clamped to the last pixel index, so the returned width is
// min(w-1, maxX+pad) - max(0, minX-pad), and likewise for height.
//
// The full image is returned when no pixel qualifies, or when the content
// spans a single column or row.
func AutoCrop(img image.Image, opts AutoCropOptions) Rect {
	src := imaging.Clone(img)
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	full := Rect{X: 0, Y: 0, W: w, H: h}

	minX, maxX, minY, maxY := w, 0, h, 0
	for y := 0; y < h; y++ {
		line := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			p := line[x*4 : x*4+3]
			if Luma(p[0], p[1], p[2]) >= opts.Threshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX <= minX || maxY <= minY {
		return full
	}

	pad := opts.Padding
	if pad < 0 {
		pad = 0
	}
	x0 := max(0, minX-pad)
	y0 := max(0, minY-pad)
	return Rect{
		X: x0,
		Y: y0,
		W: min(w-1, maxX+pad) - x0,
		H: min(h-1, maxY+pad) - y0,
	}
}
