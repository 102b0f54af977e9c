package trace

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrRegionOutOfBounds is returned when a crop rectangle does not fit inside the image.
var ErrRegionOutOfBounds = errors.New("region outside image bounds")

// Rect is a crop rectangle in image pixel coordinates.
//
// (X, Y) is the top-left corner relative to the image origin; W and H are the
// width and height in pixels. A Rect with W == 0 or H == 0 has zero area.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// String formats the rectangle for log lines.
func (r Rect) String() string {
	return fmt.Sprintf("x=%d, y=%d, w=%d, h=%d", r.X, r.Y, r.W, r.H)
}

// Validate checks that r lies inside a width x height image.
func (r Rect) Validate(width, height int) error {
	if r.X < 0 || r.Y < 0 || r.W < 0 || r.H < 0 || r.X+r.W > width || r.Y+r.H > height {
		return fmt.Errorf("%w: %s in %dx%d", ErrRegionOutOfBounds, r, width, height)
	}
	return nil
}

// Region is a row-major raster exposing 8-bit red, green and blue channels.
type Region interface {
	Width() int
	Height() int
	RGBAt(col, row int) (r, g, b uint8)
}

// Buffer is an in-memory Region holding packed RGB bytes.
type Buffer struct {
	w, h int
	pix  []uint8
}

// NewBuffer allocates a white buffer of the given size. Negative sizes are treated as zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = 255
	}
	return &Buffer{w: width, h: height, pix: pix}
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.w }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.h }

// RGBAt returns the channels at (col, row). The caller keeps coordinates in range.
func (b *Buffer) RGBAt(col, row int) (uint8, uint8, uint8) {
	i := (row*b.w + col) * 3
	return b.pix[i], b.pix[i+1], b.pix[i+2]
}

// Set writes the channels at (col, row).
func (b *Buffer) Set(col, row int, r, g, bl uint8) {
	i := (row*b.w + col) * 3
	b.pix[i], b.pix[i+1], b.pix[i+2] = r, g, bl
}

// FromImage copies the pixels under rect into a Buffer.
//
// The rectangle is relative to img.Bounds().Min. Alpha is ignored: channels
// are read non-premultiplied, the way a canvas exposes image data. A
// zero-area rectangle that starts inside the image yields an empty Buffer.
//
// # Errors
//
//   - ErrRegionOutOfBounds if any part of rect lies outside the image
func FromImage(img image.Image, rect Rect) (*Buffer, error) {
	bounds := img.Bounds()
	if err := rect.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}

	buf := NewBuffer(rect.W, rect.H)
	if rect.Empty() {
		return buf, nil
	}

	x0 := bounds.Min.X + rect.X
	y0 := bounds.Min.Y + rect.Y
	cropped := imaging.Crop(img, image.Rect(x0, y0, x0+rect.W, y0+rect.H))

	for row := 0; row < rect.H; row++ {
		line := cropped.Pix[row*cropped.Stride:]
		for col := 0; col < rect.W; col++ {
			p := line[col*4 : col*4+3]
			buf.Set(col, row, p[0], p[1], p[2])
		}
	}
	return buf, nil
}
